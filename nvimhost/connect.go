package nvimhost

import (
	"os"

	"github.com/grovetools/autoread/errors"
	"github.com/neovim/go-client/nvim"
)

// Connect dials the Neovim instance listening at addr. An empty addr falls
// back to $NVIM, which Neovim sets for every job it spawns, so a plugin
// started with jobstart needs no explicit address.
func Connect(addr string) (*nvim.Nvim, error) {
	if addr == "" {
		addr = os.Getenv("NVIM")
	}
	if addr == "" {
		return nil, errors.New(errors.ErrCodeNotConnected,
			"no nvim address: pass --addr or run inside a :terminal / jobstart job")
	}
	v, err := nvim.Dial(addr)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeNotConnected, "failed to connect to nvim at "+addr)
	}
	return v, nil
}
