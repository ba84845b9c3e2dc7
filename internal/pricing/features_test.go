package pricing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/safar/go-sql-shop/internal/models"
)

type pricingTestContext struct {
	catalog catalog
	quote   *Quote
	err     error
}

func (c *pricingTestContext) reset() {
	c.catalog = catalog{}
	c.quote = nil
	c.err = nil
}

func (c *pricingTestContext) itemSellsForWithInStock(id int64, price string, stock int) error {
	sellPrice, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	c.catalog[id] = &models.Item{ID: id, Quantity: stock, SellPrice: sellPrice}
	return nil
}

// iValidateTheLines parses "id x qty" pairs separated by commas.
func (c *pricingTestContext) iValidateTheLines(lines string) error {
	var reqs []LineRequest
	for _, part := range strings.Split(lines, ",") {
		fields := strings.Split(strings.TrimSpace(part), "x")
		if len(fields) != 2 {
			return fmt.Errorf("bad line %q", part)
		}
		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(fields[1])
		if err != nil {
			return err
		}
		reqs = append(reqs, LineRequest{ItemID: id, Quantity: qty})
	}

	c.quote, c.err = Validate(context.Background(), c.catalog, reqs)
	return nil
}

func (c *pricingTestContext) theTotalPriceIs(expected string) error {
	if c.err != nil {
		return fmt.Errorf("expected a quote but got error: %v", c.err)
	}
	want := decimal.RequireFromString(expected)
	if !c.quote.TotalPrice.Equal(want) {
		return fmt.Errorf("expected total %s, got %s", want, c.quote.TotalPrice)
	}
	return nil
}

func (c *pricingTestContext) theQuoteHasLines(n int) error {
	if c.err != nil {
		return fmt.Errorf("expected a quote but got error: %v", c.err)
	}
	if len(c.quote.Lines) != n {
		return fmt.Errorf("expected %d lines, got %d", n, len(c.quote.Lines))
	}
	return nil
}

func (c *pricingTestContext) validationFailsWithInsufficientInventory(id int64, requested, available int) error {
	var invErr *InsufficientInventoryError
	if !errors.As(c.err, &invErr) {
		return fmt.Errorf("expected insufficient inventory, got %v", c.err)
	}
	if invErr.ItemID != id || invErr.Requested != requested || invErr.Available != available {
		return fmt.Errorf("unexpected error details: %+v", invErr)
	}
	return nil
}

func (c *pricingTestContext) validationFailsBecauseItemDoesNotExist(id int64) error {
	var nfErr *ItemNotFoundError
	if !errors.As(c.err, &nfErr) {
		return fmt.Errorf("expected item not found, got %v", c.err)
	}
	if nfErr.ItemID != id {
		return fmt.Errorf("expected missing item %d, got %d", id, nfErr.ItemID)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &pricingTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^item (\d+) sells for "([^"]*)" with (\d+) in stock$`, tc.itemSellsForWithInStock)
	ctx.Step(`^I validate the lines "([^"]*)"$`, tc.iValidateTheLines)
	ctx.Step(`^the total price is "([^"]*)"$`, tc.theTotalPriceIs)
	ctx.Step(`^the quote has (\d+) lines$`, tc.theQuoteHasLines)
	ctx.Step(`^validation fails with insufficient inventory for item (\d+) requested (\d+) available (\d+)$`, tc.validationFailsWithInsufficientInventory)
	ctx.Step(`^validation fails because item (\d+) does not exist$`, tc.validationFailsBecauseItemDoesNotExist)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
