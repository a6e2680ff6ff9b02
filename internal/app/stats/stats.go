package stats

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iskrendev/insurance-portal/internal/app/sections"
	"github.com/iskrendev/insurance-portal/internal/domain"
	"github.com/iskrendev/insurance-portal/internal/ports/out/insuranceapi"
)

// TypeLine is one row of the per-type breakdown.
type TypeLine struct {
	Type    domain.Type
	Label   string
	Count   int64
	Monthly float64

	FormattedMonthly string
}

// View is the statistics screen.
type View struct {
	Totals        domain.Totals
	MonthlyByType []TypeLine

	FormattedTotal string
}

type Service struct {
	api insuranceapi.Client
	log *zap.Logger
}

func NewService(api insuranceapi.Client, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{api: api, log: log}
}

// Load fetches the summary and the record list concurrently. If either call fails
// the failure is logged and a zero view is returned.
func (s *Service) Load(ctx context.Context) View {
	var (
		totals  domain.Totals
		grouped domain.Grouped
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.api.Summary(gctx)
		if err != nil {
			return fmt.Errorf("load summary: %w", err)
		}
		totals = t
		return nil
	})
	g.Go(func() error {
		all, err := s.api.GetAll(gctx)
		if err != nil {
			return fmt.Errorf("load insurances: %w", err)
		}
		grouped = all
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Error("loading statistics failed", zap.Error(err))
		return build(domain.Totals{}, domain.Grouped{})
	}
	return build(totals, grouped)
}

func build(totals domain.Totals, grouped domain.Grouped) View {
	v := View{Totals: totals, FormattedTotal: FormatEUR(totals.TotalAmount)}
	counts := map[domain.Type]int64{
		domain.TypeLife:     totals.LifeCount,
		domain.TypeProperty: totals.PropertyCount,
		domain.TypeVehicle:  totals.VehicleCount,
	}
	for _, t := range domain.Types() {
		var monthly float64
		for _, r := range grouped.ByType(t) {
			monthly += r.Contract.PaymentPerMonth
		}
		v.MonthlyByType = append(v.MonthlyByType, TypeLine{
			Type:             t,
			Label:            sections.Label(t),
			Count:            counts[t],
			Monthly:          monthly,
			FormattedMonthly: FormatEUR(monthly),
		})
	}
	return v
}

// FormatEUR formats amount the German way, e.g. "1.234,50 €".
func FormatEUR(amount float64) string {
	p := message.NewPrinter(language.German)
	// Round half away from zero before printing; %.2f on its own rounds half to even.
	return p.Sprintf("%.2f €", math.Round(amount*100)/100)
}
