package ledger

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const repairTitle = "Invoice balance repair"

// InitializeInvoiceBalances repairs invoices whose balance is zero without the
// applications to justify it, typically data imported before allocation ever
// ran. Each candidate gets balance = total - (payment + credit applications)
// and a re-derived status, so a genuinely paid invoice stays PAID.
//
// Candidates are walked by ID in batches; every batch commits in its own unit
// of work. requestedBy, when set, receives a progress notification per batch
// and a final one.
func (s *Service) InitializeInvoiceBalances(ctx context.Context, requestedBy uuid.UUID) (*RepairReport, error) {
	const op = "initialize_invoice_balances"
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, op)
	defer span.End()

	log := s.log(ctx)
	report := &RepairReport{}
	afterID := uuid.Nil

	for {
		checked, repaired, lastID, err := s.repairBatch(ctx, afterID)
		if err != nil {
			s.notify(ctx, requestedBy, NotifyRepairFailed,
				fmt.Sprintf("Repair stopped after %d invoices: %v", report.Checked, err),
				report, nil)
			return nil, s.fail(ctx, span, op, err)
		}
		if checked == 0 {
			break
		}

		report.Batches++
		report.Checked += checked
		report.Repaired += repaired
		afterID = lastID
		s.metrics.RecordInvoicesRepaired(ctx, repaired)

		log.Info("Invoice balance repair batch committed",
			zap.Int("batch", report.Batches),
			zap.Int("checked", checked),
			zap.Int("repaired", repaired),
		)
		s.notify(ctx, requestedBy, NotifyRepairProgress,
			fmt.Sprintf("Checked %d invoices, repaired %d", report.Checked, report.Repaired),
			report, map[string]any{"last_invoice_id": lastID.String()})

		if checked < s.opts.RepairBatchSize {
			break
		}
	}

	telemetry.SetAttributes(span, "checked", report.Checked, "repaired", report.Repaired)
	log.Info("Invoice balance repair finished",
		zap.Int("checked", report.Checked),
		zap.Int("repaired", report.Repaired),
		zap.Int("batches", report.Batches),
	)
	s.notify(ctx, requestedBy, NotifyRepairCompleted,
		fmt.Sprintf("Repair finished: %d of %d invoices corrected", report.Repaired, report.Checked),
		report, nil)
	return report, nil
}

// repairBatch fixes one page of zero-balance invoices after afterID
func (s *Service) repairBatch(ctx context.Context, afterID uuid.UUID) (checked, repaired int, lastID uuid.UUID, err error) {
	uow, err := s.begin(ctx)
	if err != nil {
		return 0, 0, afterID, err
	}
	defer func() { _ = uow.Rollback() }()

	batch, err := uow.Invoices().Find(ctx, ledger.ZeroBalanceBatchQuery(afterID, s.opts.RepairBatchSize).WithLock())
	if err != nil {
		return 0, 0, afterID, fmt.Errorf("load zero-balance invoices: %w", err)
	}
	if len(batch) == 0 {
		return 0, 0, afterID, nil
	}

	ids := make([]uuid.UUID, len(batch))
	for i, inv := range batch {
		ids[i] = inv.ID
	}
	paid, err := uow.Payments().SumAppliedByInvoice(ctx, ids)
	if err != nil {
		return 0, 0, afterID, fmt.Errorf("sum payment applications: %w", err)
	}
	credited, err := uow.Credits().SumAppliedByInvoice(ctx, ids)
	if err != nil {
		return 0, 0, afterID, fmt.Errorf("sum credit applications: %w", err)
	}

	for _, inv := range batch {
		beforeBalance, beforeStatus := inv.Balance, inv.Status
		inv.ResetBalance(paid[inv.ID].Add(credited[inv.ID]))
		if inv.Balance.Equal(beforeBalance) && inv.Status == beforeStatus {
			continue
		}
		if err := uow.Invoices().Update(ctx, inv); err != nil {
			return 0, 0, afterID, fmt.Errorf("update invoice %s: %w", inv.InvoiceNumber, err)
		}
		repaired++
	}

	if err := commit(uow); err != nil {
		return 0, 0, afterID, err
	}
	return len(batch), repaired, batch[len(batch)-1].ID, nil
}

// notify delivers a repair message. Delivery failures are only logged.
func (s *Service) notify(ctx context.Context, userID uuid.UUID, kind, message string, report *RepairReport, extra map[string]any) {
	if userID == uuid.Nil {
		return
	}
	progress := map[string]any{
		"checked":  report.Checked,
		"repaired": report.Repaired,
		"batches":  report.Batches,
	}
	for k, v := range extra {
		progress[k] = v
	}
	if err := s.notifier.Notify(ctx, userID, kind, repairTitle, message, progress); err != nil {
		s.log(ctx).Warn("Failed to deliver repair notification",
			zap.String("kind", kind),
			zap.Error(err))
	}
}
