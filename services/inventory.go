package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/repository"
	"github.com/meinhoongagan/clinic-app/utils"
)

// DefaultLowStockThreshold is used when no threshold is given for the low-stock listing.
const DefaultLowStockThreshold = 10

type InventoryService struct {
	service
}

type MedicineInput struct {
	DrugName        string              `json:"drug_name"`
	Description     string              `json:"description"`
	Unit            models.MedicineUnit `json:"unit"`
	StockQuantity   int                 `json:"stock_quantity"`
	InitialQuantity int                 `json:"initial_quantity"`
	Price           float64             `json:"price"`
	ImportPrice     float64             `json:"import_price"`
	SupplierID      *uint               `json:"supplier_id"`
	ExpiryDate      time.Time           `json:"expiry_date"`
	PaymentStatus   bool                `json:"payment_status"`
}

type MedicinePatch struct {
	DrugName      *string              `json:"drug_name"`
	Description   *string              `json:"description"`
	Unit          *models.MedicineUnit `json:"unit"`
	StockQuantity *int                 `json:"stock_quantity"`
	Price         *float64             `json:"price"`
	ImportPrice   *float64             `json:"import_price"`
	SupplierID    *uint                `json:"supplier_id"`
	ExpiryDate    *time.Time           `json:"expiry_date"`
	IsActive      *bool                `json:"is_active"`
	PaymentStatus *bool                `json:"payment_status"`
}

type SupplierInput struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

type SupplierPatch struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contact_person"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	IsActive      *bool   `json:"is_active"`
}

// supplierActive reports whether the medicine's supplier (if any) is active.
func supplierActive(ctx context.Context, repos *repository.Repositories, supplierID *uint) (bool, error) {
	if supplierID == nil {
		return true, nil
	}
	sp, err := repos.Suppliers.GetByID(ctx, *supplierID)
	if err != nil {
		return false, lookup(err, "Không tìm thấy nhà cung cấp %d", *supplierID)
	}
	return sp.IsActive, nil
}

func duplicateName(err error, msg string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return utils.Validation("%s", msg)
	}
	return err
}

func (s *InventoryService) CreateMedicine(ctx context.Context, in MedicineInput) (*models.Medicine, error) {
	now := s.now()
	if !in.ExpiryDate.IsZero() && !in.ExpiryDate.After(now) {
		return nil, utils.Validation("Hạn sử dụng phải ở tương lai")
	}
	repos := s.repos()
	active, err := supplierActive(ctx, repos, in.SupplierID)
	if err != nil {
		return nil, err
	}

	m := &models.Medicine{
		DrugName:        in.DrugName,
		Description:     in.Description,
		Unit:            in.Unit,
		StockQuantity:   in.StockQuantity,
		InitialQuantity: in.InitialQuantity,
		Price:           in.Price,
		ImportPrice:     in.ImportPrice,
		SupplierID:      in.SupplierID,
		ExpiryDate:      in.ExpiryDate,
		IsActive:        true,
		PaymentStatus:   in.PaymentStatus,
	}
	if m.InitialQuantity == 0 {
		m.InitialQuantity = m.StockQuantity
	}
	m.RefreshActive(now, active)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := repos.Medicines.Create(ctx, m); err != nil {
		return nil, duplicateName(err, "Tên thuốc đã tồn tại")
	}
	return m, nil
}

func (s *InventoryService) UpdateMedicine(ctx context.Context, id uint, in MedicinePatch) (*models.Medicine, error) {
	repos := s.repos()
	m, err := repos.Medicines.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy thuốc")
	}
	if in.DrugName != nil {
		m.DrugName = *in.DrugName
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.Unit != nil {
		m.Unit = *in.Unit
	}
	if in.StockQuantity != nil {
		m.StockQuantity = *in.StockQuantity
	}
	if in.Price != nil {
		m.Price = *in.Price
	}
	if in.ImportPrice != nil {
		m.ImportPrice = *in.ImportPrice
	}
	if in.SupplierID != nil {
		m.SupplierID = in.SupplierID
		m.Supplier = nil
	}
	if in.ExpiryDate != nil {
		m.ExpiryDate = *in.ExpiryDate
	}
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
	if in.PaymentStatus != nil {
		m.PaymentStatus = *in.PaymentStatus
	}

	active, err := supplierActive(ctx, repos, m.SupplierID)
	if err != nil {
		return nil, err
	}
	m.RefreshActive(s.now(), active)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := repos.Medicines.Save(ctx, m); err != nil {
		return nil, duplicateName(err, "Tên thuốc đã tồn tại")
	}
	return m, nil
}

// DeactivateMedicine soft-disables a medicine.
func (s *InventoryService) DeactivateMedicine(ctx context.Context, id uint) (*models.Medicine, error) {
	inactive := false
	return s.UpdateMedicine(ctx, id, MedicinePatch{IsActive: &inactive})
}

func (s *InventoryService) GetMedicine(ctx context.Context, id uint) (*models.Medicine, error) {
	m, err := s.repos().Medicines.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy thuốc")
	}
	return m, nil
}

func (s *InventoryService) ListMedicines(ctx context.Context, activeOnly bool) ([]models.Medicine, error) {
	return s.repos().Medicines.List(ctx, repository.MedicineFilter{ActiveOnly: activeOnly})
}

// LowStock lists active medicines with at most threshold units left.
func (s *InventoryService) LowStock(ctx context.Context, threshold int) ([]models.Medicine, error) {
	if threshold < 0 {
		return nil, utils.Validation("Ngưỡng tồn kho không được âm")
	}
	return s.repos().Medicines.List(ctx, repository.MedicineFilter{ActiveOnly: true, MaxStock: &threshold})
}

// Restock adds quantity units to the stock and to the initial quantity.
func (s *InventoryService) Restock(ctx context.Context, id uint, quantity int) (*models.Medicine, error) {
	if quantity < 1 {
		return nil, utils.Validation("Số lượng nhập phải lớn hơn 0")
	}
	repos := s.repos()
	m, err := repos.Medicines.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy thuốc")
	}
	m.StockQuantity += quantity
	m.InitialQuantity += quantity
	if err := repos.Medicines.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("save medicine: %w", err)
	}
	s.log.Info("medicine restocked", zap.Uint("medicine_id", m.ID), zap.Int("quantity", quantity))
	return m, nil
}

// SweepExpired deactivates every medicine whose expiry date has passed.
func (s *InventoryService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repos().Medicines.DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("deactivate expired medicines: %w", err)
	}
	if n > 0 {
		s.log.Info("expired medicines deactivated", zap.Int64("count", n))
	}
	return n, nil
}

func (s *InventoryService) CreateSupplier(ctx context.Context, in SupplierInput) (*models.Supplier, error) {
	sp := &models.Supplier{
		Name:          in.Name,
		ContactPerson: in.ContactPerson,
		Phone:         in.Phone,
		Email:         in.Email,
		Address:       in.Address,
		IsActive:      true,
	}
	if err := sp.Validate(); err != nil {
		return nil, err
	}
	if err := s.repos().Suppliers.Create(ctx, sp); err != nil {
		return nil, duplicateName(err, "Tên nhà cung cấp đã tồn tại")
	}
	return sp, nil
}

func (s *InventoryService) GetSupplier(ctx context.Context, id uint) (*models.Supplier, error) {
	sp, err := s.repos().Suppliers.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy nhà cung cấp")
	}
	return sp, nil
}

func (s *InventoryService) ListSuppliers(ctx context.Context, activeOnly bool) ([]models.Supplier, error) {
	return s.repos().Suppliers.List(ctx, activeOnly)
}

// UpdateSupplier patches a supplier. Turning it inactive cascades to its medicines; the
// second result is how many medicines were deactivated.
func (s *InventoryService) UpdateSupplier(ctx context.Context, id uint, in SupplierPatch) (*models.Supplier, int64, error) {
	var (
		sp          *models.Supplier
		deactivated int64
	)
	err := s.store.WithinTx(ctx, func(repos *repository.Repositories) error {
		var err error
		sp, err = repos.Suppliers.GetByID(ctx, id)
		if err != nil {
			return lookup(err, "Không tìm thấy nhà cung cấp")
		}
		wasActive := sp.IsActive
		if in.Name != nil {
			sp.Name = *in.Name
		}
		if in.ContactPerson != nil {
			sp.ContactPerson = *in.ContactPerson
		}
		if in.Phone != nil {
			sp.Phone = *in.Phone
		}
		if in.Email != nil {
			sp.Email = *in.Email
		}
		if in.Address != nil {
			sp.Address = *in.Address
		}
		if in.IsActive != nil {
			sp.IsActive = *in.IsActive
		}
		if err := sp.Validate(); err != nil {
			return err
		}
		if err := repos.Suppliers.Save(ctx, sp); err != nil {
			return duplicateName(err, "Tên nhà cung cấp đã tồn tại")
		}
		if wasActive && !sp.IsActive {
			deactivated, err = s.deactivateMedicinesBySupplier(ctx, repos, sp.ID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return sp, deactivated, nil
}

// DeactivateSupplier soft-disables a supplier and its medicines.
func (s *InventoryService) DeactivateSupplier(ctx context.Context, id uint) (*models.Supplier, int64, error) {
	inactive := false
	return s.UpdateSupplier(ctx, id, SupplierPatch{IsActive: &inactive})
}

// DeactivateMedicinesBySupplier turns off every active medicine of the supplier.
func (s *InventoryService) DeactivateMedicinesBySupplier(ctx context.Context, supplierID uint) (int64, error) {
	return s.deactivateMedicinesBySupplier(ctx, s.repos(), supplierID)
}

func (s *InventoryService) deactivateMedicinesBySupplier(ctx context.Context, repos *repository.Repositories, supplierID uint) (int64, error) {
	n, err := repos.Medicines.DeactivateBySupplier(ctx, supplierID)
	if err != nil {
		return 0, fmt.Errorf("deactivate medicines of supplier %d: %w", supplierID, err)
	}
	s.log.Info("supplier medicines deactivated", zap.Uint("supplier_id", supplierID), zap.Int64("count", n))
	return n, nil
}
