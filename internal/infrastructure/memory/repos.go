package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/ledger"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// Vistas de repositorio fuera de transacción. Las mutaciones se aplican de
// inmediato; los caminos que necesitan atomicidad y bloqueo de fila usan el
// TxRunner, no estas vistas.

// Balances devuelve la vista BalanceRepository del almacén.
func (s *Store) Balances() repository.BalanceRepository { return balanceView{s} }

// Movements devuelve la vista MovementRepository del almacén.
func (s *Store) Movements() repository.MovementRepository { return movementView{s} }

// Sales devuelve la vista SaleRepository del almacén.
func (s *Store) Sales() repository.SaleRepository { return saleView{s} }

// Returns devuelve la vista ReturnRepository del almacén.
func (s *Store) Returns() repository.ReturnRepository { return returnView{s} }

// Products devuelve la vista ProductRepository del almacén.
func (s *Store) Products() repository.ProductRepository { return productView{s} }

// Locations devuelve la vista LocationRepository del almacén.
func (s *Store) Locations() repository.LocationRepository { return locationView{s} }

type balanceView struct{ s *Store }

var _ repository.BalanceRepository = balanceView{}

func (v balanceView) Get(productID, locationID string) (*entity.Balance, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return v.s.balanceCopy(ledger.BalanceKey{ProductID: productID, LocationID: locationID}), nil
}

// GetForUpdate fuera de transacción no bloquea; el bloqueo real vive en los
// repos transaccionales del TxRunner.
func (v balanceView) GetForUpdate(productID, locationID string) (*entity.Balance, error) {
	return v.Get(productID, locationID)
}

func (v balanceView) Upsert(balance *entity.Balance) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	b := *balance
	v.s.balances[ledger.BalanceKey{ProductID: b.ProductID, LocationID: b.LocationID}] = &b
	return nil
}

func (v balanceView) Delete(productID, locationID string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	k := ledger.BalanceKey{ProductID: productID, LocationID: locationID}
	if _, ok := v.s.balances[k]; !ok {
		return domain.ErrNotFound
	}
	delete(v.s.balances, k)
	return nil
}

func (v balanceView) ListByLocation(locationID string, limit, offset int) ([]*entity.Balance, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return listBalances(v.s.balances, locationID, limit, offset), nil
}

func listBalances(balances map[ledger.BalanceKey]*entity.Balance, locationID string, limit, offset int) []*entity.Balance {
	var out []*entity.Balance
	for k, b := range balances {
		if k.LocationID == locationID {
			c := *b
			out = append(out, &c)
		}
	}
	sortBalances(out)
	return paginate(out, limit, offset)
}

type movementView struct{ s *Store }

var _ repository.MovementRepository = movementView{}

func (v movementView) Create(m *entity.MovementRecord) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	c := *m
	v.s.movements = append(v.s.movements, &c)
	return nil
}

func (v movementView) GetByID(id string) (*entity.MovementRecord, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	for _, m := range v.s.movements {
		if m.ID == id {
			c := *m
			return &c, nil
		}
	}
	return nil, nil
}

func (v movementView) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return filterMovements(v.s.movements, func(m *entity.MovementRecord) bool {
		return m.ProductID == productID
	}, from, to, limit, offset), nil
}

func (v movementView) ListByLocation(locationID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return filterMovements(v.s.movements, func(m *entity.MovementRecord) bool {
		return m.LocationID == locationID
	}, from, to, limit, offset), nil
}

func (v movementView) SumByBalance(productID, locationID string) (decimal.Decimal, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return sumMovements(v.s.movements, productID, locationID), nil
}

type saleView struct{ s *Store }

var _ repository.SaleRepository = saleView{}

func (v saleView) Create(sale *entity.Sale) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.sales[sale.ID]; ok {
		return domain.ErrDuplicate
	}
	c := *sale
	v.s.sales[sale.ID] = &c
	return nil
}

func (v saleView) CreateLine(line *entity.SaleLine) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	c := *line
	v.s.saleLines[line.SaleID] = append(v.s.saleLines[line.SaleID], &c)
	v.s.saleLineIDs[line.ID] = &c
	return nil
}

func (v saleView) GetByID(id string) (*entity.Sale, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if sale, ok := v.s.sales[id]; ok {
		c := *sale
		return &c, nil
	}
	return nil, nil
}

func (v saleView) GetLines(saleID string) ([]*entity.SaleLine, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return copySaleLines(v.s.saleLines[saleID]), nil
}

func (v saleView) GetLineByID(lineID string) (*entity.SaleLine, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if l, ok := v.s.saleLineIDs[lineID]; ok {
		c := *l
		return &c, nil
	}
	return nil, nil
}

func (v saleView) ListByLocation(locationID string, limit, offset int) ([]*entity.Sale, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []*entity.Sale
	for _, sale := range v.s.sales {
		if sale.LocationID == locationID {
			c := *sale
			out = append(out, &c)
		}
	}
	sortSalesDesc(out)
	return paginate(out, limit, offset), nil
}

type returnView struct{ s *Store }

var _ repository.ReturnRepository = returnView{}

func (v returnView) Create(ret *entity.Return) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.returns[ret.ID]; ok {
		return domain.ErrDuplicate
	}
	c := *ret
	v.s.returns[ret.ID] = &c
	return nil
}

func (v returnView) CreateLine(line *entity.ReturnLine) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	c := *line
	v.s.returnLines[line.ReturnID] = append(v.s.returnLines[line.ReturnID], &c)
	return nil
}

func (v returnView) GetByID(id string) (*entity.Return, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if ret, ok := v.s.returns[id]; ok {
		c := *ret
		return &c, nil
	}
	return nil, nil
}

func (v returnView) GetByIDForUpdate(id string) (*entity.Return, error) {
	return v.GetByID(id)
}

func (v returnView) GetLines(returnID string) ([]*entity.ReturnLine, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return copyReturnLines(v.s.returnLines[returnID]), nil
}

func (v returnView) ListBySale(saleID string) ([]*entity.Return, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []*entity.Return
	for _, ret := range v.s.returns {
		if ret.SaleID == saleID {
			c := *ret
			out = append(out, &c)
		}
	}
	sortReturnsAsc(out)
	return out, nil
}

func (v returnView) UpdateStatus(id, status string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	ret, ok := v.s.returns[id]
	if !ok {
		return domain.ErrNotFound
	}
	ret.Status = status
	ret.UpdatedAt = time.Now()
	return nil
}

func (v returnView) ReturnedQuantityBySaleLine(saleID string) (map[string]decimal.Decimal, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	result := make(map[string]decimal.Decimal)
	for retID, lines := range v.s.returnLines {
		ret, ok := v.s.returns[retID]
		if !ok || ret.SaleID != saleID || ret.Status == entity.ReturnStatusRejected {
			continue
		}
		for _, l := range lines {
			result[l.SaleLineID] = result[l.SaleLineID].Add(l.Quantity)
		}
	}
	return result, nil
}

type productView struct{ s *Store }

var _ repository.ProductRepository = productView{}

func (v productView) Create(p *entity.Product) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := v.s.productSKUs[p.SKU]; ok {
		return domain.ErrDuplicate
	}
	c := *p
	v.s.products[p.ID] = &c
	v.s.productSKUs[p.SKU] = p.ID
	return nil
}

func (v productView) GetByID(id string) (*entity.Product, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if p, ok := v.s.products[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (v productView) GetBySKU(sku string) (*entity.Product, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if id, ok := v.s.productSKUs[sku]; ok {
		c := *v.s.products[id]
		return &c, nil
	}
	return nil, nil
}

func (v productView) List(limit, offset int) ([]*entity.Product, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []*entity.Product
	for _, p := range v.s.products {
		c := *p
		out = append(out, &c)
	}
	sortProducts(out)
	return paginate(out, limit, offset), nil
}

type locationView struct{ s *Store }

var _ repository.LocationRepository = locationView{}

func (v locationView) Create(l *entity.Location) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.locations[l.ID]; ok {
		return domain.ErrDuplicate
	}
	c := *l
	v.s.locations[l.ID] = &c
	return nil
}

func (v locationView) GetByID(id string) (*entity.Location, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if l, ok := v.s.locations[id]; ok {
		c := *l
		return &c, nil
	}
	return nil, nil
}

func (v locationView) List(limit, offset int) ([]*entity.Location, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []*entity.Location
	for _, l := range v.s.locations {
		c := *l
		out = append(out, &c)
	}
	sortLocations(out)
	return paginate(out, limit, offset), nil
}
