package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/application/inventory"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/ledger"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// Run ejecuta fn con repos transaccionales y publica las escrituras solo si
// fn termina sin error. Los bloqueos de fila adquiridos dentro de fn se
// sostienen hasta commit o rollback, igual que en PostgreSQL.
func (s *Store) Run(ctx context.Context, fn func(
	balRepo repository.BalanceRepository,
	movRepo repository.MovementRepository,
) error) error {
	tx := newMemTx(s)
	defer tx.release()
	if err := fn(txBalances{tx}, txMovements{tx}); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// RunSale ejecuta fn con los repos que necesita una venta.
func (s *Store) RunSale(ctx context.Context, fn func(
	balRepo repository.BalanceRepository,
	movRepo repository.MovementRepository,
	saleRepo repository.SaleRepository,
) error) error {
	tx := newMemTx(s)
	defer tx.release()
	if err := fn(txBalances{tx}, txMovements{tx}, txSales{tx}); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// RunReturn ejecuta fn con los repos que necesita una devolución.
func (s *Store) RunReturn(ctx context.Context, fn func(
	balRepo repository.BalanceRepository,
	movRepo repository.MovementRepository,
	saleRepo repository.SaleRepository,
	retRepo repository.ReturnRepository,
) error) error {
	tx := newMemTx(s)
	defer tx.release()
	if err := fn(txBalances{tx}, txMovements{tx}, txSales{tx}, txReturns{tx}); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// memTx acumula escrituras sin tocar el almacén hasta commit. Los bloqueos
// por fila se registran para no re-adquirirlos y para soltarlos al final.
type memTx struct {
	s *Store

	balances       map[ledger.BalanceKey]*entity.Balance
	balanceDeletes map[ledger.BalanceKey]bool
	movements      []*entity.MovementRecord
	sales          []*entity.Sale
	saleLines      []*entity.SaleLine
	returns        []*entity.Return
	returnLines    []*entity.ReturnLine
	returnStatus   map[string]string

	heldRows    map[ledger.BalanceKey]*sync.Mutex
	heldReturns map[string]*sync.Mutex
}

func newMemTx(s *Store) *memTx {
	return &memTx{
		s:              s,
		balances:       make(map[ledger.BalanceKey]*entity.Balance),
		balanceDeletes: make(map[ledger.BalanceKey]bool),
		returnStatus:   make(map[string]string),
		heldRows:       make(map[ledger.BalanceKey]*sync.Mutex),
		heldReturns:    make(map[string]*sync.Mutex),
	}
}

// lockRow adquiere el bloqueo de la fila de balance si la tx aún no lo tiene.
func (t *memTx) lockRow(k ledger.BalanceKey) error {
	if _, held := t.heldRows[k]; held {
		return nil
	}
	m := t.s.rowLock(k)
	if err := t.s.acquire(m); err != nil {
		return err
	}
	t.heldRows[k] = m
	return nil
}

// lockReturn adquiere el bloqueo de la cabecera de devolución.
func (t *memTx) lockReturn(id string) error {
	if _, held := t.heldReturns[id]; held {
		return nil
	}
	m := t.s.returnLock(id)
	if err := t.s.acquire(m); err != nil {
		return err
	}
	t.heldReturns[id] = m
	return nil
}

// commit publica todas las escrituras acumuladas bajo el mutex global.
func (t *memTx) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for k, b := range t.balances {
		c := *b
		t.s.balances[k] = &c
	}
	for k := range t.balanceDeletes {
		delete(t.s.balances, k)
	}
	for _, m := range t.movements {
		c := *m
		t.s.movements = append(t.s.movements, &c)
	}
	for _, sale := range t.sales {
		c := *sale
		t.s.sales[sale.ID] = &c
	}
	for _, l := range t.saleLines {
		c := *l
		t.s.saleLines[l.SaleID] = append(t.s.saleLines[l.SaleID], &c)
		t.s.saleLineIDs[l.ID] = &c
	}
	for _, ret := range t.returns {
		c := *ret
		t.s.returns[ret.ID] = &c
	}
	for _, l := range t.returnLines {
		c := *l
		t.s.returnLines[l.ReturnID] = append(t.s.returnLines[l.ReturnID], &c)
	}
	now := time.Now()
	for id, status := range t.returnStatus {
		if ret, ok := t.s.returns[id]; ok {
			ret.Status = status
			ret.UpdatedAt = now
		}
	}

	t.balances = nil
	t.movements = nil
}

// release suelta todos los bloqueos de la tx. Idempotente: commit y rollback
// terminan aquí vía defer.
func (t *memTx) release() {
	for k, m := range t.heldRows {
		m.Unlock()
		delete(t.heldRows, k)
	}
	for id, m := range t.heldReturns {
		m.Unlock()
		delete(t.heldReturns, id)
	}
}

// --- repos transaccionales ---

type txBalances struct{ t *memTx }

var _ repository.BalanceRepository = txBalances{}

func (r txBalances) Get(productID, locationID string) (*entity.Balance, error) {
	k := ledger.BalanceKey{ProductID: productID, LocationID: locationID}
	if r.t.balanceDeletes[k] {
		return &entity.Balance{ProductID: productID, LocationID: locationID, Quantity: decimal.Zero}, nil
	}
	if b, ok := r.t.balances[k]; ok {
		c := *b
		return &c, nil
	}
	r.t.s.mu.RLock()
	defer r.t.s.mu.RUnlock()
	return r.t.s.balanceCopy(k), nil
}

// GetForUpdate bloquea la fila (mutex por clave) antes de leerla. Otra tx
// sobre la misma clave espera aquí hasta lock_timeout.
func (r txBalances) GetForUpdate(productID, locationID string) (*entity.Balance, error) {
	k := ledger.BalanceKey{ProductID: productID, LocationID: locationID}
	if err := r.t.lockRow(k); err != nil {
		return nil, err
	}
	return r.Get(productID, locationID)
}

func (r txBalances) Upsert(balance *entity.Balance) error {
	k := ledger.BalanceKey{ProductID: balance.ProductID, LocationID: balance.LocationID}
	c := *balance
	r.t.balances[k] = &c
	delete(r.t.balanceDeletes, k)
	return nil
}

func (r txBalances) Delete(productID, locationID string) error {
	k := ledger.BalanceKey{ProductID: productID, LocationID: locationID}
	_, staged := r.t.balances[k]
	r.t.s.mu.RLock()
	_, committed := r.t.s.balances[k]
	r.t.s.mu.RUnlock()
	if !staged && !committed {
		return domain.ErrNotFound
	}
	delete(r.t.balances, k)
	r.t.balanceDeletes[k] = true
	return nil
}

func (r txBalances) ListByLocation(locationID string, limit, offset int) ([]*entity.Balance, error) {
	merged := make(map[ledger.BalanceKey]*entity.Balance)
	r.t.s.mu.RLock()
	for k, b := range r.t.s.balances {
		merged[k] = b
	}
	r.t.s.mu.RUnlock()
	for k, b := range r.t.balances {
		merged[k] = b
	}
	for k := range r.t.balanceDeletes {
		delete(merged, k)
	}
	return listBalances(merged, locationID, limit, offset), nil
}

type txMovements struct{ t *memTx }

var _ repository.MovementRepository = txMovements{}

func (r txMovements) Create(m *entity.MovementRecord) error {
	c := *m
	r.t.movements = append(r.t.movements, &c)
	return nil
}

func (r txMovements) GetByID(id string) (*entity.MovementRecord, error) {
	for _, m := range r.t.movements {
		if m.ID == id {
			c := *m
			return &c, nil
		}
	}
	return movementView{r.t.s}.GetByID(id)
}

func (r txMovements) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	return filterMovements(r.all(), func(m *entity.MovementRecord) bool {
		return m.ProductID == productID
	}, from, to, limit, offset), nil
}

func (r txMovements) ListByLocation(locationID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	return filterMovements(r.all(), func(m *entity.MovementRecord) bool {
		return m.LocationID == locationID
	}, from, to, limit, offset), nil
}

func (r txMovements) SumByBalance(productID, locationID string) (decimal.Decimal, error) {
	return sumMovements(r.all(), productID, locationID), nil
}

func (r txMovements) all() []*entity.MovementRecord {
	r.t.s.mu.RLock()
	combined := make([]*entity.MovementRecord, 0, len(r.t.s.movements)+len(r.t.movements))
	combined = append(combined, r.t.s.movements...)
	r.t.s.mu.RUnlock()
	return append(combined, r.t.movements...)
}

type txSales struct{ t *memTx }

var _ repository.SaleRepository = txSales{}

func (r txSales) Create(sale *entity.Sale) error {
	existing, err := r.GetByID(sale.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrDuplicate
	}
	c := *sale
	r.t.sales = append(r.t.sales, &c)
	return nil
}

func (r txSales) CreateLine(line *entity.SaleLine) error {
	c := *line
	r.t.saleLines = append(r.t.saleLines, &c)
	return nil
}

func (r txSales) GetByID(id string) (*entity.Sale, error) {
	for _, sale := range r.t.sales {
		if sale.ID == id {
			c := *sale
			return &c, nil
		}
	}
	return saleView{r.t.s}.GetByID(id)
}

func (r txSales) GetLines(saleID string) ([]*entity.SaleLine, error) {
	lines, err := saleView{r.t.s}.GetLines(saleID)
	if err != nil {
		return nil, err
	}
	for _, l := range r.t.saleLines {
		if l.SaleID == saleID {
			c := *l
			lines = append(lines, &c)
		}
	}
	return lines, nil
}

func (r txSales) GetLineByID(lineID string) (*entity.SaleLine, error) {
	for _, l := range r.t.saleLines {
		if l.ID == lineID {
			c := *l
			return &c, nil
		}
	}
	return saleView{r.t.s}.GetLineByID(lineID)
}

func (r txSales) ListByLocation(locationID string, limit, offset int) ([]*entity.Sale, error) {
	out, err := saleView{r.t.s}.ListByLocation(locationID, 0, 0)
	if err != nil {
		return nil, err
	}
	for _, sale := range r.t.sales {
		if sale.LocationID == locationID {
			c := *sale
			out = append(out, &c)
		}
	}
	sortSalesDesc(out)
	return paginate(out, limit, offset), nil
}

type txReturns struct{ t *memTx }

var _ repository.ReturnRepository = txReturns{}

func (r txReturns) Create(ret *entity.Return) error {
	existing, err := r.GetByID(ret.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrDuplicate
	}
	c := *ret
	r.t.returns = append(r.t.returns, &c)
	return nil
}

func (r txReturns) CreateLine(line *entity.ReturnLine) error {
	c := *line
	r.t.returnLines = append(r.t.returnLines, &c)
	return nil
}

func (r txReturns) GetByID(id string) (*entity.Return, error) {
	for _, ret := range r.t.returns {
		if ret.ID == id {
			c := *ret
			return &c, nil
		}
	}
	ret, err := returnView{r.t.s}.GetByID(id)
	if err != nil || ret == nil {
		return ret, err
	}
	if status, ok := r.t.returnStatus[id]; ok {
		ret.Status = status
	}
	return ret, nil
}

// GetByIDForUpdate bloquea la cabecera antes de leerla: dos transiciones
// concurrentes sobre la misma devolución se serializan aquí.
func (r txReturns) GetByIDForUpdate(id string) (*entity.Return, error) {
	if err := r.t.lockReturn(id); err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

func (r txReturns) GetLines(returnID string) ([]*entity.ReturnLine, error) {
	lines, err := returnView{r.t.s}.GetLines(returnID)
	if err != nil {
		return nil, err
	}
	for _, l := range r.t.returnLines {
		if l.ReturnID == returnID {
			c := *l
			lines = append(lines, &c)
		}
	}
	return lines, nil
}

func (r txReturns) ListBySale(saleID string) ([]*entity.Return, error) {
	out, err := returnView{r.t.s}.ListBySale(saleID)
	if err != nil {
		return nil, err
	}
	for i, ret := range out {
		if status, ok := r.t.returnStatus[ret.ID]; ok {
			out[i].Status = status
		}
	}
	for _, ret := range r.t.returns {
		if ret.SaleID == saleID {
			c := *ret
			out = append(out, &c)
		}
	}
	sortReturnsAsc(out)
	return out, nil
}

func (r txReturns) UpdateStatus(id, status string) error {
	for _, ret := range r.t.returns {
		if ret.ID == id {
			ret.Status = status
			return nil
		}
	}
	existing, err := returnView{r.t.s}.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	r.t.returnStatus[id] = status
	return nil
}

func (r txReturns) ReturnedQuantityBySaleLine(saleID string) (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal)
	rets, err := r.ListBySale(saleID)
	if err != nil {
		return nil, err
	}
	for _, ret := range rets {
		if ret.Status == entity.ReturnStatusRejected {
			continue
		}
		lines, err := r.GetLines(ret.ID)
		if err != nil {
			return nil, err
		}
		for _, l := range lines {
			result[l.SaleLineID] = result[l.SaleLineID].Add(l.Quantity)
		}
	}
	return result, nil
}
