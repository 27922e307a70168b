package api

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
)

// Binder binds like echo's default binder and validates the result.
type Binder struct {
	echo.DefaultBinder
}

func NewBinder() *Binder {
	return &Binder{}
}

func (b *Binder) Bind(i interface{}, c echo.Context) error {
	if err := b.DefaultBinder.Bind(i, c); err != nil {
		return fmt.Errorf("%w: %s", constants.ErrBadRequest, err.Error())
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(i)
}
