package forecaster

import (
	"fmt"
	"io"

	"github.com/aouyang1/go-forecast-narrator/forecast"
)

// Model is the serializeable form of a fit Forecaster
type Model struct {
	Options  *Options       `json:"options"`
	Series   forecast.Model `json:"series_model"`
	Residual forecast.Model `json:"residual_model"`
}

// TablePrint writes a human readable summary of both the series and uncertainty models
func (m Model) TablePrint(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Series:"); err != nil {
		return err
	}
	if err := m.Series.TablePrint(w, "  ", "  "); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "Uncertainty:"); err != nil {
		return err
	}
	if m.Options != nil {
		if _, err := fmt.Fprintf(w, "  Residual Window: %d    Residual Z-Score: %.4f\n", m.Options.ResidualWindow, m.Options.ResidualZscore); err != nil {
			return err
		}
	}
	if err := m.Residual.TablePrint(w, "  ", "  "); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
