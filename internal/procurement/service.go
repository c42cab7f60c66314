package procurement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-dms/meridian-dms/internal/distribution"
	"github.com/meridian-dms/meridian-dms/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	SupplierExists(ctx context.Context, id int64) (bool, error)
	GetPO(ctx context.Context, id int64) (PurchaseOrder, []POLine, error)
	ListPOs(ctx context.Context, filters ListFilters) ([]PurchaseOrder, error)
	GetGRN(ctx context.Context, id int64) (GoodsReceivedNote, []GRNLine, error)
	ListGRNs(ctx context.Context, filters ListFilters) ([]GoodsReceivedNote, error)
}

// Service orchestrates the purchasing and receiving flows.
type Service struct {
	repo        RepositoryPort
	idempotency *shared.IdempotencyStore
	logger      *slog.Logger
}

// NewService constructs procurement service.
func NewService(repo RepositoryPort, idem *shared.IdempotencyStore, logger *slog.Logger) *Service {
	return &Service{repo: repo, idempotency: idem, logger: logger}
}

// CreatePOInput describes creation payload.
type CreatePOInput struct {
	Code       string
	SupplierID int64
	OrderDate  time.Time
	Lines      []POLineInput
}

// POLineInput describes one ordered item.
type POLineInput struct {
	ItemID int64
	Qty    float64
}

// CreateGRNInput describes GRN creation.
type CreateGRNInput struct {
	POID        int64
	Code        string
	ReceiveDate time.Time
	Lines       []GRNLineInput
}

// GRNLineInput records ordered vs received quantity.
type GRNLineInput struct {
	ItemID      int64
	OrderedQty  float64
	ReceivedQty float64
}

// CreateGRNResult reports the created GRN and, on quantity mismatch, the
// follow-up purchase order spawned for the received quantities.
type CreateGRNResult struct {
	GRNID   int64 `json:"grn_id"`
	NewPOID int64 `json:"new_po_id,omitempty"`
}

// CreatePurchaseOrder persists PO header and lines. No stock effect.
func (s *Service) CreatePurchaseOrder(ctx context.Context, input CreatePOInput) (PurchaseOrder, error) {
	if len(input.Lines) == 0 {
		return PurchaseOrder{}, fmt.Errorf("%w: at least one line required", ErrValidation)
	}
	exists, err := s.repo.SupplierExists(ctx, input.SupplierID)
	if err != nil {
		return PurchaseOrder{}, err
	}
	if !exists {
		return PurchaseOrder{}, fmt.Errorf("%w: supplier %d", ErrNotFound, input.SupplierID)
	}
	if input.Code == "" {
		input.Code = generateCode("PO")
	}
	po := PurchaseOrder{Code: input.Code, SupplierID: input.SupplierID, Status: POStatusPending, OrderDate: defaultTime(input.OrderDate)}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		poID, err := tx.CreatePO(ctx, po)
		if err != nil {
			return err
		}
		for _, line := range input.Lines {
			if line.ItemID == 0 || line.Qty <= 0 {
				return ErrValidation
			}
			if err := tx.InsertPOLine(ctx, POLine{POID: poID, ItemID: line.ItemID, Qty: line.Qty}); err != nil {
				return err
			}
		}
		po.ID = poID
		return nil
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.logger.Info("purchase order created", "po_id", po.ID, "code", po.Code)
	return po, nil
}

// UpdatePurchaseOrder changes order date and supplier of an existing PO.
func (s *Service) UpdatePurchaseOrder(ctx context.Context, id int64, orderDate time.Time, supplierID int64) error {
	exists, err := s.repo.SupplierExists(ctx, supplierID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: supplier %d", ErrNotFound, supplierID)
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdatePO(ctx, id, defaultTime(orderDate), supplierID)
	})
}

// DeletePurchaseOrder soft deletes a PO. Posted receipts are never reversed.
func (s *Service) DeletePurchaseOrder(ctx context.Context, id int64) error {
	if _, _, err := s.repo.GetPO(ctx, id); err != nil {
		return err
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdatePOStatus(ctx, id, POStatusDeleted)
	})
}

func (s *Service) GetPurchaseOrder(ctx context.Context, id int64) (PurchaseOrder, []POLine, error) {
	return s.repo.GetPO(ctx, id)
}

func (s *Service) ListPurchaseOrders(ctx context.Context, filters ListFilters) ([]PurchaseOrder, error) {
	return s.repo.ListPOs(ctx, filters)
}

func (s *Service) GetGRN(ctx context.Context, id int64) (GoodsReceivedNote, []GRNLine, error) {
	return s.repo.GetGRN(ctx, id)
}

func (s *Service) ListGRNs(ctx context.Context, filters ListFilters) ([]GoodsReceivedNote, error) {
	return s.repo.ListGRNs(ctx, filters)
}

// CreateGRN records the receipt against a PO and settles the PO in the same
// transaction: all quantities matching marks it COMPLETED; any mismatch marks
// it IGNORED and spawns a fresh PENDING PO holding the received quantities.
// Stock is not touched until the GRN is accepted.
func (s *Service) CreateGRN(ctx context.Context, input CreateGRNInput) (CreateGRNResult, error) {
	if len(input.Lines) == 0 {
		return CreateGRNResult{}, fmt.Errorf("%w: at least one line required", ErrValidation)
	}
	po, _, err := s.repo.GetPO(ctx, input.POID)
	if err != nil {
		return CreateGRNResult{}, err
	}
	if input.Code == "" {
		input.Code = generateCode("GRN")
	}
	grn := GoodsReceivedNote{Code: input.Code, POID: po.ID, SupplierID: po.SupplierID, Status: GRNStatusPending, ReceiveDate: defaultTime(input.ReceiveDate)}

	var result CreateGRNResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		grnID, err := tx.CreateGRN(ctx, grn)
		if err != nil {
			return err
		}
		result.GRNID = grnID

		mismatch := false
		for _, line := range input.Lines {
			if line.ItemID == 0 || line.OrderedQty < 0 || line.ReceivedQty < 0 {
				return ErrValidation
			}
			if line.OrderedQty != line.ReceivedQty {
				mismatch = true
			}
			if err := tx.InsertGRNLine(ctx, GRNLine{GRNID: grnID, ItemID: line.ItemID, OrderedQty: line.OrderedQty, ReceivedQty: line.ReceivedQty}); err != nil {
				return err
			}
		}

		if !mismatch {
			return tx.UpdatePOStatus(ctx, po.ID, POStatusCompleted)
		}

		if err := tx.UpdatePOStatus(ctx, po.ID, POStatusIgnored); err != nil {
			return err
		}
		var remaining []POLine
		for _, line := range input.Lines {
			if line.ReceivedQty <= 0 {
				continue
			}
			remaining = append(remaining, POLine{ItemID: line.ItemID, Qty: line.ReceivedQty})
		}
		// Nothing was received, so there is nothing to reorder.
		if len(remaining) == 0 {
			return nil
		}
		newPOID, err := tx.CreatePO(ctx, PurchaseOrder{Code: generateCode("PO"), SupplierID: po.SupplierID, Status: POStatusPending, OrderDate: time.Now()})
		if err != nil {
			return err
		}
		for _, line := range remaining {
			line.POID = newPOID
			if err := tx.InsertPOLine(ctx, line); err != nil {
				return err
			}
		}
		result.NewPOID = newPOID
		return nil
	})
	if err != nil {
		return CreateGRNResult{}, err
	}
	s.logger.Info("goods received note created", "grn_id", result.GRNID, "po_id", po.ID, "new_po_id", result.NewPOID)
	return result, nil
}

// AcceptGRN posts the received quantities into stock. Only a PENDING GRN can
// be accepted; re-acceptance is rejected rather than double-posted.
func (s *Service) AcceptGRN(ctx context.Context, id int64) error {
	grn, lines, err := s.repo.GetGRN(ctx, id)
	if err != nil {
		return err
	}
	if grn.Status != GRNStatusPending {
		return fmt.Errorf("%w: GRN %s is %s", ErrInvalidState, grn.Code, grn.Status)
	}

	key := fmt.Sprintf("GRN:%s", grn.Code)
	inserted := false
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "procurement.grn"); err != nil {
			return err
		}
		inserted = true
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateGRNStatus(ctx, id, GRNStatusAccepted); err != nil {
			return err
		}
		for _, line := range lines {
			if _, err := tx.UpsertStock(ctx, line.ItemID, line.ReceivedQty); err != nil {
				return err
			}
			ref := uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("GRN:%d:%d", grn.ID, line.ItemID)))
			if err := tx.InsertStockUpdate(ctx, distribution.StockUpdate{
				ItemID:    line.ItemID,
				QtyChange: line.ReceivedQty,
				Type:      distribution.UpdateTypeGRN,
				RefCode:   ref.String(),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if inserted {
			_ = s.idempotency.Delete(ctx, key)
		}
		return err
	}
	s.logger.Info("goods received note accepted", "grn_id", id, "code", grn.Code)
	return nil
}

// UpdateGRNStatus sets a non-ACCEPTED status directly. Acceptance goes
// through AcceptGRN so stock posting cannot be skipped.
func (s *Service) UpdateGRNStatus(ctx context.Context, id int64, status GRNStatus) error {
	switch status {
	case GRNStatusPending, GRNStatusDeleted:
	case GRNStatusAccepted:
		return s.AcceptGRN(ctx, id)
	default:
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	grn, _, err := s.repo.GetGRN(ctx, id)
	if err != nil {
		return err
	}
	if grn.Status == GRNStatusAccepted {
		return fmt.Errorf("%w: GRN %s already accepted", ErrInvalidState, grn.Code)
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateGRNStatus(ctx, id, status)
	})
}

func generateCode(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func defaultTime(value time.Time) time.Time {
	if value.IsZero() {
		return time.Now()
	}
	return value
}
