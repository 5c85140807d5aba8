package core

import (
	"fmt"

	"github.com/sidereusnuntius/tabletop/internal/client"
	"github.com/sidereusnuntius/tabletop/internal/service"
)

const DefaultMinSearchLength = 2

type AppService struct {
	Client *client.HttpClient
	// MinSearchLength is the shortest trimmed query SearchUsers sends to the backend.
	MinSearchLength int
}

func New(c *client.HttpClient, minSearchLength int) service.Service {
	if minSearchLength <= 0 {
		minSearchLength = DefaultMinSearchLength
	}
	return &AppService{
		Client:          c,
		MinSearchLength: minSearchLength,
	}
}

func checkID(name string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s %d", service.ErrInvalidID, name, id)
	}
	return nil
}
