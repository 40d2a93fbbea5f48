package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
)

// store — разделяемое состояние in-memory фейков. Транзакционный менеджер
// снимает с него копию перед fn и откатывает состояние при ошибке, имитируя
// атомарность настоящей транзакции.
type store struct {
	products map[int64]*domain.Product
	carts    map[int64]*domain.Cart
	items    map[int64]*domain.CartItem
	orders   map[int64]*domain.Order
	events   []*OutboxEvent
	audits   []*domain.AuditLog
	nextID   int64
}

func newStore() *store {
	return &store{
		products: make(map[int64]*domain.Product),
		carts:    make(map[int64]*domain.Cart),
		items:    make(map[int64]*domain.CartItem),
		orders:   make(map[int64]*domain.Order),
	}
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *store) clone() *store {
	c := newStore()
	c.nextID = s.nextID
	for id, p := range s.products {
		cp := *p
		c.products[id] = &cp
	}
	for id, cart := range s.carts {
		cp := *cart
		cp.Items = nil
		c.carts[id] = &cp
	}
	for id, item := range s.items {
		cp := *item
		c.items[id] = &cp
	}
	for id, order := range s.orders {
		cp := *order
		cp.Items = append([]domain.OrderItem(nil), order.Items...)
		c.orders[id] = &cp
	}
	c.events = append([]*OutboxEvent(nil), s.events...)
	c.audits = append([]*domain.AuditLog(nil), s.audits...)
	return c
}

// env собирает фейки вокруг общего store.
type env struct {
	store *store
}

func newEnv() *env {
	return &env{store: newStore()}
}

func (v *env) addProduct(name string, price int64, stock, threshold int) *domain.Product {
	p := domain.NewProduct(name, price, stock, threshold)
	p.ID = v.store.id()
	p.CreatedAt = time.Now().UTC()
	v.store.products[p.ID] = p
	return p
}

// fakeTxManager реализует trm.Manager поверх store с откатом на ошибке.
type fakeTxManager struct {
	env *env
}

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	backup := m.env.store.clone()
	if err := fn(ctx); err != nil {
		m.env.store = backup
		return err
	}
	return nil
}

func (m *fakeTxManager) DoWithSettings(ctx context.Context, _ trm.Settings, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}

// fakeProductRepo реализует ProductRepository поверх store.
type fakeProductRepo struct {
	env           *env
	failDecrement bool
}

func (r *fakeProductRepo) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	p := *product
	p.ID = r.env.store.id()
	p.CreatedAt = time.Now().UTC()
	r.env.store.products[p.ID] = &p
	res := p
	return &res, nil
}

func (r *fakeProductRepo) get(id int64) (*domain.Product, error) {
	p, ok := r.env.store.products[id]
	if !ok || p.DeletedAt != nil {
		return nil, e.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	p, err := r.get(id)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProductRepo) LockByIDs(_ context.Context, ids []int64) ([]*domain.Product, error) {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	products := make([]*domain.Product, 0, len(sorted))
	for _, id := range sorted {
		p, err := r.get(id)
		if err != nil {
			continue
		}
		cp := *p
		products = append(products, &cp)
	}
	return products, nil
}

func (r *fakeProductRepo) List(_ context.Context, req *ListProductsReq) ([]domain.Product, int64, error) {
	products := make([]domain.Product, 0)
	for _, p := range r.env.store.products {
		if p.DeletedAt == nil {
			products = append(products, *p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID > products[j].ID })
	return products, int64(len(products)), nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if _, err := r.get(product.ID); err != nil {
		return nil, err
	}
	cp := *product
	r.env.store.products[product.ID] = &cp
	res := cp
	return &res, nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, productID int64, quantity int) (int, error) {
	if r.failDecrement {
		return 0, errors.New("injected decrement failure")
	}
	p, err := r.get(productID)
	if err != nil {
		return 0, err
	}
	if p.StockQuantity < quantity {
		return 0, e.ErrStockExceeded
	}
	p.StockQuantity -= quantity
	return p.StockQuantity, nil
}

func (r *fakeProductRepo) MarkLowStockNotified(_ context.Context, productID int64, at time.Time) error {
	p, err := r.get(productID)
	if err != nil {
		return err
	}
	if p.LowStockNotifiedAt == nil {
		t := at
		p.LowStockNotifiedAt = &t
	}
	return nil
}

func (r *fakeProductRepo) AddImages(_ context.Context, productID int64, images []ProductImage, keys []string) error {
	p, err := r.get(productID)
	if err != nil {
		return err
	}
	for i, key := range keys {
		p.Images = append(p.Images, domain.ProductImage{ProductID: productID, ObjectKey: key, SortOrder: i})
	}
	return nil
}

func (r *fakeProductRepo) DeleteImages(_ context.Context, productID int64) ([]string, error) {
	p, err := r.get(productID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		keys = append(keys, img.ObjectKey)
	}
	p.Images = nil
	return keys, nil
}

func (r *fakeProductRepo) SoftDelete(_ context.Context, id int64) error {
	p, err := r.get(id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	p.DeletedAt = &now
	return nil
}

// fakeCartRepo реализует CartRepository поверх store.
type fakeCartRepo struct {
	env *env
}

func (r *fakeCartRepo) activeCart(userID int64) *domain.Cart {
	for _, c := range r.env.store.carts {
		if c.UserID == userID && c.Status == domain.CartStatusActive {
			return c
		}
	}
	return nil
}

func (r *fakeCartRepo) GetOrCreateActive(_ context.Context, userID int64) (*domain.Cart, bool, error) {
	if c := r.activeCart(userID); c != nil {
		cp := *c
		return &cp, false, nil
	}
	c := domain.NewCart(userID)
	c.ID = r.env.store.id()
	c.CreatedAt = time.Now().UTC()
	r.env.store.carts[c.ID] = c
	cp := *c
	return &cp, true, nil
}

func (r *fakeCartRepo) GetActiveForUpdate(_ context.Context, userID int64) (*domain.Cart, error) {
	c := r.activeCart(userID)
	if c == nil {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCartRepo) GetItemForUpdate(_ context.Context, cartID, productID int64) (*domain.CartItem, error) {
	for _, item := range r.env.store.items {
		if item.CartID == cartID && item.ProductID == productID {
			cp := *item
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCartRepo) UpsertItem(_ context.Context, cartID, productID int64, quantity int) error {
	for _, item := range r.env.store.items {
		if item.CartID == cartID && item.ProductID == productID {
			item.Quantity = quantity
			return nil
		}
	}
	item := &domain.CartItem{ID: r.env.store.id(), CartID: cartID, ProductID: productID, Quantity: quantity}
	r.env.store.items[item.ID] = item
	return nil
}

func (r *fakeCartRepo) SoftDeleteItem(_ context.Context, itemID int64) error {
	delete(r.env.store.items, itemID)
	return nil
}

func (r *fakeCartRepo) CountLiveItems(_ context.Context, cartID int64) (int, error) {
	count := 0
	for _, item := range r.env.store.items {
		if item.CartID == cartID {
			count++
		}
	}
	return count, nil
}

func (r *fakeCartRepo) SoftDeleteCart(_ context.Context, cartID int64) error {
	c, ok := r.env.store.carts[cartID]
	if !ok || c.Status != domain.CartStatusActive {
		return e.ErrCartNotActive
	}
	now := time.Now().UTC()
	c.Status = domain.CartStatusDeleted
	c.DeletedAt = &now
	return nil
}

func (r *fakeCartRepo) MarkOrdered(_ context.Context, cartID int64, at time.Time) error {
	c, ok := r.env.store.carts[cartID]
	if !ok || c.Status != domain.CartStatusActive {
		return e.ErrCartNotActive
	}
	t := at
	c.Status = domain.CartStatusOrdered
	c.OrderedAt = &t
	return nil
}

func (r *fakeCartRepo) ListItems(_ context.Context, cartID int64) ([]domain.CartItem, error) {
	items := make([]domain.CartItem, 0)
	for _, item := range r.env.store.items {
		if item.CartID != cartID {
			continue
		}
		cp := *item
		if p, ok := r.env.store.products[item.ProductID]; ok {
			pc := *p
			cp.Product = &pc
		}
		items = append(items, cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *fakeCartRepo) GetWithItems(ctx context.Context, cartID int64) (*domain.Cart, error) {
	c, ok := r.env.store.carts[cartID]
	if !ok {
		return nil, e.ErrCartNotFound
	}
	cp := *c
	items, err := r.ListItems(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cp.Items = items
	return &cp, nil
}

func (r *fakeCartRepo) List(_ context.Context, req *ListCartsReq) ([]domain.Cart, int64, error) {
	carts := make([]domain.Cart, 0)
	for _, c := range r.env.store.carts {
		if req.Status != "" && string(c.Status) != req.Status {
			continue
		}
		carts = append(carts, *c)
	}
	sort.Slice(carts, func(i, j int) bool { return carts[i].ID < carts[j].ID })
	return carts, int64(len(carts)), nil
}

// fakeOrderRepo реализует OrderRepository поверх store.
type fakeOrderRepo struct {
	env        *env
	failCreate bool
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if r.failCreate {
		return nil, errors.New("injected order insert failure")
	}
	o := *order
	o.ID = r.env.store.id()
	o.CreatedAt = time.Now().UTC()
	o.Items = make([]domain.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		item.ID = r.env.store.id()
		item.OrderID = o.ID
		o.Items = append(o.Items, item)
	}
	r.env.store.orders[o.ID] = &o
	cp := o
	return &cp, nil
}

func (r *fakeOrderRepo) GetWithItems(_ context.Context, orderID int64) (*domain.Order, error) {
	o, ok := r.env.store.orders[orderID]
	if !ok {
		return nil, e.ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	for i := range cp.Items {
		if p, ok := r.env.store.products[cp.Items[i].ProductID]; ok {
			pc := *p
			cp.Items[i].Product = &pc
		}
	}
	return &cp, nil
}

func (r *fakeOrderRepo) ListForUser(_ context.Context, userID int64, page, perPage int) ([]domain.Order, int64, error) {
	orders := make([]domain.Order, 0)
	for _, o := range r.env.store.orders {
		if o.UserID == userID {
			orders = append(orders, *o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, int64(len(orders)), nil
}

func (r *fakeOrderRepo) List(_ context.Context, req *ListOrdersReq) ([]domain.Order, int64, error) {
	orders := make([]domain.Order, 0)
	for _, o := range r.env.store.orders {
		orders = append(orders, *o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, int64(len(orders)), nil
}

// fakeOutboxRepo реализует OutboxRepository поверх store.
type fakeOutboxRepo struct {
	env *env
}

func (r *fakeOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	cp := *event
	cp.ID = r.env.store.id()
	r.env.store.events = append(r.env.store.events, &cp)
	return &cp, nil
}

func (r *fakeOutboxRepo) GetAndMarkAsProcessing(_ context.Context, limit int) ([]*OutboxEvent, error) {
	res := make([]*OutboxEvent, 0, limit)
	for _, ev := range r.env.store.events {
		if ev.Status == Pending && len(res) < limit {
			ev.Status = Processing
			res = append(res, ev)
		}
	}
	return res, nil
}

func (r *fakeOutboxRepo) MarkAsProcessed(_ context.Context, id int64) error {
	for _, ev := range r.env.store.events {
		if ev.ID == id {
			ev.Status = Processed
		}
	}
	return nil
}

func (r *fakeOutboxRepo) eventsOfType(t OutboxEventType) []*OutboxEvent {
	res := make([]*OutboxEvent, 0)
	for _, ev := range r.env.store.events {
		if ev.EventType == t {
			res = append(res, ev)
		}
	}
	return res
}

// fakeAuditRepo реализует AuditLogRepository поверх store.
type fakeAuditRepo struct {
	env *env
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	cp := *entry
	cp.ID = r.env.store.id()
	r.env.store.audits = append(r.env.store.audits, &cp)
	return nil
}

// fakeImagesInfra реализует ImagesInfra без настоящего S3.
type fakeImagesInfra struct {
	uploaded   [][]string
	cleaned    [][]string
	failUpload bool
}

func (f *fakeImagesInfra) UploadImages(_ context.Context, req *UploadImagesReq) (*UploadImagesRes, error) {
	if f.failUpload {
		return nil, errors.New("injected upload failure")
	}
	keys := make([]string, 0, len(req.Images))
	for i := range req.Images {
		keys = append(keys, fmt.Sprintf("%s/img-%d", req.Name, i))
	}
	f.uploaded = append(f.uploaded, keys)
	return NewUploadImagesRes(keys), nil
}

func (f *fakeImagesInfra) CleanupImages(keys []string) {
	f.cleaned = append(f.cleaned, keys)
}

func (f *fakeImagesInfra) ObjectURL(key string) string {
	return "http://minio/shop/" + key
}

// fixture собирает юзкейсы с общим состоянием.
type fixture struct {
	env         *env
	productRepo *fakeProductRepo
	cartRepo    *fakeCartRepo
	orderRepo   *fakeOrderRepo
	outboxRepo  *fakeOutboxRepo
	auditRepo   *fakeAuditRepo
	images      *fakeImagesInfra
	cartUC      *CartUseCase
	productUC   *ProductUseCase
}

func newFixture() *fixture {
	v := newEnv()
	f := &fixture{
		env:         v,
		productRepo: &fakeProductRepo{env: v},
		cartRepo:    &fakeCartRepo{env: v},
		orderRepo:   &fakeOrderRepo{env: v},
		outboxRepo:  &fakeOutboxRepo{env: v},
		auditRepo:   &fakeAuditRepo{env: v},
		images:      &fakeImagesInfra{},
	}

	log := logger.NewSlogLogger()
	tx := &fakeTxManager{env: v}

	f.cartUC = NewCartUC(f.cartRepo, f.productRepo, f.orderRepo, f.outboxRepo, f.auditRepo, tx, f.images, log)
	f.productUC = NewProductUC(f.productRepo, f.auditRepo, tx, f.images, log)
	return f
}
