package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ariefcatur/go-storefront-sync/internal/inventory"
	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProductExists = errors.New("product already exists")

// Product is the catalog's own record. The snapshot part is what gets
// copied into carts, wishlists and orders; Unit is the stock count.
type Product struct {
	storefront.ProductSnapshot
	Desc      string `json:"desc,omitempty"`
	Type      string `json:"type,omitempty"`
	Available bool   `json:"available"`
	Supplier  string `json:"supplier,omitempty"`
	Unit      int    `json:"unit"`
}

// Products looks up the catalog's own product records. Missing products are
// reported as inventory.ErrProductNotFound.
type Products interface {
	FindByID(ctx context.Context, id string) (Product, error)
	// List returns the products of one type, or all of them when typ is
	// empty, ordered by id.
	List(ctx context.Context, typ string) ([]Product, error)
	// FindMany returns the products among ids that exist, in ids order.
	FindMany(ctx context.Context, ids []string) ([]Product, error)
	// Create stores p with p.Unit as its opening stock. A taken id fails
	// with ErrProductExists.
	Create(ctx context.Context, p Product) error
}

type PostgresProducts struct{ DB *pgxpool.Pool }

func NewPostgresProducts(db *pgxpool.Pool) *PostgresProducts { return &PostgresProducts{DB: db} }

const productColumns = `id, name, price, banner, description, category, available, supplier, unit`

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (Product, error) {
	var p Product
	var price string
	err := row.Scan(&p.ID, &p.Name, &price, &p.Banner, &p.Desc, &p.Type, &p.Available, &p.Supplier, &p.Unit)
	p.Price = storefront.Price(price)
	return p, err
}

func (s *PostgresProducts) FindByID(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(s.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, inventory.ErrProductNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("find product %s: %w", id, err)
	}
	return p, nil
}

func (s *PostgresProducts) List(ctx context.Context, typ string) ([]Product, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE $1 = '' OR category = $1
		ORDER BY id`, typ)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Product, error) { return scanProduct(row) })
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func (s *PostgresProducts) FindMany(ctx context.Context, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	rows, err := s.DB.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	found, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Product, error) { return scanProduct(row) })
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	byID := make(map[string]Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	return pick(byID, ids), nil
}

func (s *PostgresProducts) Create(ctx context.Context, p Product) error {
	ct, err := s.DB.Exec(ctx, `
		INSERT INTO products(`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`,
		p.ID, p.Name, string(p.Price), p.Banner, p.Desc, p.Type, p.Available, p.Supplier, p.Unit)
	if err != nil {
		return fmt.Errorf("create product %s: %w", p.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrProductExists
	}
	return nil
}

// MemoryProducts keeps product records in memory. Stock lives in the linked
// inventory store, if any.
type MemoryProducts struct {
	mu       sync.RWMutex
	products map[string]Product
	stock    *inventory.MemoryStore
}

func NewMemoryProducts(ps ...storefront.ProductSnapshot) *MemoryProducts {
	m := &MemoryProducts{products: make(map[string]Product, len(ps))}
	for _, p := range ps {
		m.products[p.ID] = Product{ProductSnapshot: p, Available: true}
	}
	return m
}

// WithStock links the inventory store that Create seeds and reads take
// units from.
func (m *MemoryProducts) WithStock(stock *inventory.MemoryStore) *MemoryProducts {
	m.stock = stock
	return m
}

func (m *MemoryProducts) FindByID(ctx context.Context, id string) (Product, error) {
	m.mu.RLock()
	p, ok := m.products[id]
	m.mu.RUnlock()
	if !ok {
		return Product{}, inventory.ErrProductNotFound
	}
	return m.withUnit(ctx, p), nil
}

func (m *MemoryProducts) List(ctx context.Context, typ string) ([]Product, error) {
	m.mu.RLock()
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		if typ == "" || p.Type == typ {
			out = append(out, p)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	for i := range out {
		out[i] = m.withUnit(ctx, out[i])
	}
	return out, nil
}

func (m *MemoryProducts) FindMany(ctx context.Context, ids []string) ([]Product, error) {
	m.mu.RLock()
	out := pick(m.products, ids)
	m.mu.RUnlock()
	for i := range out {
		out[i] = m.withUnit(ctx, out[i])
	}
	return out, nil
}

func (m *MemoryProducts) Create(_ context.Context, p Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; ok {
		return ErrProductExists
	}
	m.products[p.ID] = p
	if m.stock != nil {
		m.stock.SetStock(p.ID, p.Unit)
	}
	return nil
}

func (m *MemoryProducts) withUnit(ctx context.Context, p Product) Product {
	if m.stock != nil {
		if n, err := m.stock.Stock(ctx, p.ID); err == nil {
			p.Unit = n
		}
	}
	return p
}

// pick returns byID[id] for each id present, in ids order, once per id.
func pick(byID map[string]Product, ids []string) []Product {
	out := make([]Product, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, p)
		}
	}
	return out
}
