package httpapi

import (
	"context"
	"errors"

	"github.com/safar/go-sql-shop/internal/models"
	"github.com/safar/go-sql-shop/internal/pricing"
	"github.com/safar/go-sql-shop/internal/shop"
	"github.com/safar/go-sql-shop/internal/store"
)

type fakeTokens map[string]int64

func (f fakeTokens) Verify(token string) (int64, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return 0, errors.New("bad token")
}

type fakeCatalog struct {
	search, ordering string
	page, pageSize   int
	created          shop.ItemInput
	patch            shop.ItemPatch
	category         shop.CategoryInput
	err              error
}

func (f *fakeCatalog) ListItems(_ context.Context, search, ordering string, page, pageSize int) (*store.OffsetPage, error) {
	f.search, f.ordering, f.page, f.pageSize = search, ordering, page, pageSize
	if f.err != nil {
		return nil, f.err
	}
	return &store.OffsetPage{Items: []models.Item{}, Page: 1, PageSize: 20}, nil
}

func (f *fakeCatalog) GetItem(_ context.Context, id int64) (*models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Item{ID: id, Title: "Shirt"}, nil
}

func (f *fakeCatalog) CreateItem(_ context.Context, in shop.ItemInput) (*models.Item, error) {
	f.created = in
	return &models.Item{ID: 1, Title: in.Title}, f.err
}

func (f *fakeCatalog) ReplaceItem(_ context.Context, id int64, in shop.ItemInput) (*models.Item, error) {
	f.created = in
	return &models.Item{ID: id, Title: in.Title}, f.err
}

func (f *fakeCatalog) PatchItem(_ context.Context, id int64, patch shop.ItemPatch) (*models.Item, error) {
	f.patch = patch
	return &models.Item{ID: id}, f.err
}

func (f *fakeCatalog) DeleteItem(context.Context, int64) error { return f.err }

func (f *fakeCatalog) ListCategories(_ context.Context, page, pageSize int) (*store.OffsetPage, error) {
	f.page, f.pageSize = page, pageSize
	return &store.OffsetPage{Items: []models.Category{}}, f.err
}

func (f *fakeCatalog) GetCategory(_ context.Context, id int64) (*models.Category, error) {
	return &models.Category{ID: id, Items: []int64{}}, f.err
}

func (f *fakeCatalog) CreateCategory(_ context.Context, in shop.CategoryInput) (*models.Category, error) {
	f.category = in
	return &models.Category{ID: 1, Name: in.Name, Items: in.Items}, f.err
}

func (f *fakeCatalog) ReplaceCategory(_ context.Context, id int64, in shop.CategoryInput) (*models.Category, error) {
	f.category = in
	return &models.Category{ID: id, Name: in.Name, Items: in.Items}, f.err
}

func (f *fakeCatalog) PatchCategory(_ context.Context, id int64, _ shop.CategoryPatch) (*models.Category, error) {
	return &models.Category{ID: id}, f.err
}

func (f *fakeCatalog) DeleteCategory(context.Context, int64) error { return f.err }

type fakeWishlists struct {
	owner   int64
	items   []int64
	created bool
	err     error
}

func (f *fakeWishlists) result(owner int64, items []int64) *models.Wishlist {
	f.owner, f.items = owner, items
	return &models.Wishlist{ID: 1, Owner: owner, Items: items}
}

func (f *fakeWishlists) Get(_ context.Context, owner int64) (*models.Wishlist, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result(owner, []int64{}), nil
}

func (f *fakeWishlists) Upsert(_ context.Context, owner int64, items []int64) (*models.Wishlist, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return f.result(owner, items), f.created, nil
}

func (f *fakeWishlists) AddItems(_ context.Context, owner int64, items []int64) (*models.Wishlist, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result(owner, items), nil
}

func (f *fakeWishlists) RemoveItems(_ context.Context, owner int64, items []int64) (*models.Wishlist, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result(owner, items), nil
}

type fakeCarts struct {
	owner   int64
	lines   []pricing.LineRequest
	created bool
	err     error
}

func (f *fakeCarts) GetDetail(_ context.Context, owner int64) (*models.Cart, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Cart{ID: 1, Owner: owner, Items: []models.LineItem{}}, nil
}

func (f *fakeCarts) CreateOrReplace(_ context.Context, owner int64, lines []pricing.LineRequest) (*models.Cart, bool, error) {
	f.owner, f.lines = owner, lines
	if f.err != nil {
		return nil, false, f.err
	}
	return &models.Cart{ID: 1, Owner: owner, Items: []models.LineItem{}}, f.created, nil
}

type fakeOrders struct {
	orderID, requester int64
	status, cursor     string
	limit              int
	err                error
}

func (f *fakeOrders) PlaceFromCart(_ context.Context, owner int64) (*models.Order, error) {
	f.requester = owner
	if f.err != nil {
		return nil, f.err
	}
	return &models.Order{ID: 7, Owner: owner, Status: models.OrderStatusPlaced}, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, orderID, requester int64, status string) (*models.Order, error) {
	f.orderID, f.requester, f.status = orderID, requester, status
	if f.err != nil {
		return nil, f.err
	}
	return &models.Order{ID: orderID, Owner: requester, Status: status}, nil
}

func (f *fakeOrders) Get(_ context.Context, orderID, requester int64) (*models.Order, error) {
	f.orderID, f.requester = orderID, requester
	if f.err != nil {
		return nil, f.err
	}
	return &models.Order{ID: orderID, Owner: requester}, nil
}

func (f *fakeOrders) List(_ context.Context, owner int64, cursor string, limit int) (*store.CursorPage, error) {
	f.requester, f.cursor, f.limit = owner, cursor, limit
	if f.err != nil {
		return nil, f.err
	}
	return &store.CursorPage{Items: []models.Order{}}, nil
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

