package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("CLINISTOCK_TEST_MODE") == "" {
			_ = os.Setenv("CLINISTOCK_TEST_MODE", "1")
		}
	})
}
