package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/payment"
	"github.com/fjod/storefront/internal/repository"
)

type staticLister []domain.Product

func (l staticLister) ListProducts(context.Context) ([]domain.Product, error) {
	return l, nil
}

type fixedStatus struct {
	ok     bool
	reason string
}

func (f *fixedStatus) GetStatus() (bool, string) {
	return f.ok, f.reason
}

type checkoutTestContext struct {
	products []domain.Product
	status   *fixedStatus
	intents  *payment.IntentStore
	orders   *repository.StoreOrderRepository
	session  *Session
	intent   domain.PaymentIntent
	order    domain.Order
	err      error
}

func (c *checkoutTestContext) reset() {
	if c.intents != nil {
		_ = c.intents.Close()
	}
	c.products = nil
	c.status = &fixedStatus{ok: true}
	c.intents = payment.NewIntentStore(time.Minute)
	c.orders = nil
	c.session = nil
	c.intent = domain.PaymentIntent{}
	c.order = domain.Order{}
	c.err = nil
}

func (c *checkoutTestContext) theCatalogHasTheseProducts(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		id, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return err
		}
		price, err := domain.ParseMoney(row.Cells[2].Value)
		if err != nil {
			return err
		}
		c.products = append(c.products, domain.Product{ID: id, Title: row.Cells[1].Value, Price: price})
	}
	return nil
}

func (c *checkoutTestContext) iAmSignedInAs(userID string) error {
	store := repository.NewMemoryStore()
	c.orders = repository.NewStoreOrderRepository(store)
	deps := Deps{
		Store:   NewStoreHandler(store, time.Second),
		Orders:  NewOrdersHandler(c.orders, time.Second),
		Payment: NewPaymentHandler(payment.NewSimulated(c.intents, c.status), time.Second),
		Catalog: NewCatalogHandler(catalog.NewSnapshot(staticLister(c.products)), time.Second),
	}
	s, err := OpenSession(context.Background(), deps, userID)
	c.session = s
	return err
}

func (c *checkoutTestContext) iHaveAShippingAddressIn(city string) error {
	_, err := c.session.AddAddress(context.Background(), domain.AddressInput{
		FullName:     "Asha Rao",
		Phone:        "9876543210",
		AddressLine1: "12 MG Road",
		City:         city,
		State:        "KA",
		Pincode:      "560001",
	})
	return err
}

func (c *checkoutTestContext) myCartHolds(qtyA int, idA int64, qtyB int, idB int64) error {
	lines, err := c.session.Cart()
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		if _, err := c.session.AddToCart(context.Background(), idA, qtyA); err != nil {
			return err
		}
		_, err := c.session.AddToCart(context.Background(), idB, qtyB)
		return err
	}

	want := map[int64]int{idA: qtyA, idB: qtyB}
	if len(lines) != len(want) {
		return fmt.Errorf("expected %d cart lines, got %d", len(want), len(lines))
	}
	for _, line := range lines {
		if want[line.Product.ID] != line.Quantity {
			return fmt.Errorf("product %d: expected quantity %d, got %d", line.Product.ID, want[line.Product.ID], line.Quantity)
		}
	}
	return nil
}

func (c *checkoutTestContext) theCartSummaryShows(subtotal, shipping, tax, total string) error {
	summary, err := c.session.CartSummary()
	if err != nil {
		return err
	}
	got := []domain.Money{summary.Totals.Subtotal, summary.Totals.Shipping, summary.Totals.Tax, summary.Totals.Total}
	for i, s := range []string{subtotal, shipping, tax, total} {
		want, err := domain.ParseMoney(s)
		if err != nil {
			return err
		}
		if got[i] != want {
			return fmt.Errorf("expected %s, got %s", want, got[i])
		}
	}
	return nil
}

func (c *checkoutTestContext) theGatewayWillRefuse(reason string) error {
	c.status.ok, c.status.reason = false, reason
	return nil
}

func (c *checkoutTestContext) theGatewayWillAccept() error {
	c.status.ok = true
	return nil
}

func (c *checkoutTestContext) iStartPayingWith(method string) error {
	m, err := domain.ParsePaymentMethod(method)
	if err != nil {
		return err
	}
	c.intent, err = c.session.InitiatePayment(context.Background(), m)
	return err
}

func (c *checkoutTestContext) iPlaceTheOrderPayingWith(method string) error {
	m, err := domain.ParsePaymentMethod(method)
	if err != nil {
		return err
	}
	c.order, c.err = c.session.PlaceOrder(context.Background(), m, domain.PaymentConfirmation{IntentID: c.intent.ID})
	return nil
}

func (c *checkoutTestContext) theOrderIsPlacedWithStatus(status string) error {
	if c.err != nil {
		return fmt.Errorf("expected order but got error: %v", c.err)
	}
	if c.order.Status.String() != status {
		return fmt.Errorf("expected status %s, got %s", status, c.order.Status)
	}
	return nil
}

func (c *checkoutTestContext) theOrderHasNoPaymentID() error {
	if c.order.PaymentID != "" {
		return fmt.Errorf("expected no payment id, got %q", c.order.PaymentID)
	}
	return nil
}

func (c *checkoutTestContext) theOrderHasAPaymentID() error {
	if c.order.PaymentID == "" {
		return errors.New("expected a payment id")
	}
	return nil
}

func (c *checkoutTestContext) theOrderFailsWith(substring string) error {
	if c.err == nil {
		return errors.New("expected order to fail but it succeeded")
	}
	if !strings.Contains(c.err.Error(), substring) {
		return fmt.Errorf("expected error containing %q, got %q", substring, c.err.Error())
	}
	return nil
}

func (c *checkoutTestContext) theOrderHistoryHolds(n int) error {
	orders, err := c.session.Orders(context.Background())
	if err != nil {
		return err
	}
	if len(orders) != n {
		return fmt.Errorf("expected %d orders, got %d", n, len(orders))
	}
	return nil
}

func (c *checkoutTestContext) myCartIsEmpty() error {
	lines, err := c.session.Cart()
	if err != nil {
		return err
	}
	if len(lines) != 0 {
		return fmt.Errorf("expected empty cart, got %d lines", len(lines))
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the catalog has these products:$`, tc.theCatalogHasTheseProducts)
	ctx.Step(`^I am signed in as "([^"]*)"$`, tc.iAmSignedInAs)
	ctx.Step(`^I have a shipping address in "([^"]*)"$`, tc.iHaveAShippingAddressIn)
	ctx.Step(`^my cart holds (\d+) of product (\d+) and (\d+) of product (\d+)$`, tc.myCartHolds)
	ctx.Step(`^the payment gateway will refuse payments with "([^"]*)"$`, tc.theGatewayWillRefuse)
	ctx.Step(`^the payment gateway will accept payments$`, tc.theGatewayWillAccept)

	// When steps
	ctx.Step(`^I start paying with "([^"]*)"$`, tc.iStartPayingWith)
	ctx.Step(`^I place the order paying with "([^"]*)"$`, tc.iPlaceTheOrderPayingWith)

	// Then steps
	ctx.Step(`^the cart summary shows subtotal ([\d.]+), shipping ([\d.]+), tax ([\d.]+) and total ([\d.]+)$`, tc.theCartSummaryShows)
	ctx.Step(`^the order is placed with status "([^"]*)"$`, tc.theOrderIsPlacedWithStatus)
	ctx.Step(`^the order has no payment id$`, tc.theOrderHasNoPaymentID)
	ctx.Step(`^the order has a payment id$`, tc.theOrderHasAPaymentID)
	ctx.Step(`^the order fails with "([^"]*)"$`, tc.theOrderFailsWith)
	ctx.Step(`^the order history holds (\d+) orders?$`, tc.theOrderHistoryHolds)
	ctx.Step(`^my cart is empty$`, tc.myCartIsEmpty)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features/checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
