package quote

import (
	"context"
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/storefront/cart"
)

// DefaultConfirmationDelay is how long the confirmation stays visible before
// the cart is emptied.
const DefaultConfirmationDelay = 2500 * time.Millisecond

// Checkout is the caller side of a quote: it reads the cart, submits it and
// clears the cart only after the confirmation delay.
type Checkout struct {
	Cart     cart.Cart
	Composer *Composer
	Delay    time.Duration

	// OnSubmitted runs between a successful submit and the delay.
	OnSubmitted func(*Result)
}

// NewCheckout uses DefaultConfirmationDelay when delay is not positive.
func NewCheckout(c cart.Cart, composer *Composer, delay time.Duration) *Checkout {
	if delay <= 0 {
		delay = DefaultConfirmationDelay
	}
	return &Checkout{Cart: c, Composer: composer, Delay: delay}
}

// Run returns ErrEmptyCart without submitting when the cart is empty. Once the
// quote is submitted the cart is always cleared; ctx ending only cuts the
// delay short.
func (c *Checkout) Run(ctx context.Context, contact Contact) (*Result, error) {
	entries := c.Cart.Items()
	if len(entries) == 0 {
		return nil, ErrEmptyCart
	}

	res, err := c.Composer.Submit(ctx, contact, entries)
	if err != nil {
		return nil, err
	}
	if c.OnSubmitted != nil {
		c.OnSubmitted(res)
	}

	delay := c.Delay
	if delay < 0 {
		delay = 0
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}

	if err := c.Cart.Clear(context.WithoutCancel(ctx)); err != nil {
		return res, err
	}
	return res, ctx.Err()
}
