// Package snapshot dumps a solved weekly.Problem to disk in two forms: a
// compact binary form for replay tooling (msgpack, grounded on the
// teacher's preference for compact wire formats over the stdlib's verbose
// encoding/gob) and a human-readable text form for manual inspection,
// matching the export_structure/export_raw_results options.
package snapshot

import (
	"fmt"
	"os"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/adequacy-core/internal/lpmatrix"
	"github.com/aristath/adequacy-core/internal/weekly"
)

// Binary is the msgpack-serializable projection of a solved Problem. It
// carries only the matrix's CSR storage and result vectors — entity
// pointers and the index maps are reconstructible from the study inputs
// and aren't worth persisting.
type Binary struct {
	RunID string
	Year  int
	Week  int

	NCols, NRows, NNZ int
	RowStart          []int
	ColIndex          []int
	Coeff             []float64
	Sense             []byte
	RHS               []float64
	XMin, XMax        []float64
	Cost              []float64

	Primal       []float64
	Dual         []float64
	ReducedCosts []float64

	Pass1ObjValue float64
	Pass2ObjValue float64
}

func toBinary(p *weekly.Problem) Binary {
	m := p.Matrix
	sense := make([]byte, len(m.Sense))
	for i, s := range m.Sense {
		sense[i] = byte(s)
	}
	return Binary{
		RunID:         p.RunID.String(),
		Year:          p.Year,
		Week:          p.Week,
		NCols:         m.NCols,
		NRows:         m.NRows,
		NNZ:           m.NNZ,
		RowStart:      m.RowStart,
		ColIndex:      m.ColIndex,
		Coeff:         m.Coeff,
		Sense:         sense,
		RHS:           m.RHS,
		XMin:          m.XMin,
		XMax:          m.XMax,
		Cost:          m.Cost,
		Primal:        p.Primal,
		Dual:          p.Dual,
		ReducedCosts:  p.ReducedCosts,
		Pass1ObjValue: p.Pass1.ObjValue,
		Pass2ObjValue: p.Pass2.ObjValue,
	}
}

// WriteBinary encodes p as msgpack and writes it to path.
func WriteBinary(path string, p *weekly.Problem) error {
	data, err := msgpack.Marshal(toBinary(p))
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ReadBinary decodes a snapshot previously written by WriteBinary.
func ReadBinary(path string) (Binary, error) {
	var b Binary
	data, err := os.ReadFile(path)
	if err != nil {
		return b, fmt.Errorf("read snapshot: %w", err)
	}
	if err := msgpack.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return b, nil
}

// WriteText renders p as a human-readable key/value dump: one line per
// column and per row, named via the matrix's ColNames/RowNames when
// naming was enabled, falling back to a positional label otherwise.
func WriteText(path string, p *weekly.Problem) error {
	var sb strings.Builder
	m := p.Matrix

	fmt.Fprintf(&sb, "run_id=%s year=%d week=%d\n", p.RunID, p.Year, p.Week)
	fmt.Fprintf(&sb, "pass1_status=%d pass1_obj=%g\n", p.Pass1.Status, p.Pass1.ObjValue)
	fmt.Fprintf(&sb, "pass2_status=%d pass2_obj=%g\n", p.Pass2.Status, p.Pass2.ObjValue)
	sb.WriteString("\n# columns\n")
	for i := 0; i < m.NCols; i++ {
		name := columnLabel(m, i)
		var value float64
		if i < len(p.Primal) {
			value = p.Primal[i]
		}
		fmt.Fprintf(&sb, "%s = %g (cost=%g, xmin=%g, xmax=%g)\n", name, value, atf(m.Cost, i), atf(m.XMin, i), atf(m.XMax, i))
	}
	sb.WriteString("\n# rows\n")
	for i := 0; i < m.NRows; i++ {
		name := rowLabel(m, i)
		var dual float64
		if i < len(p.Dual) {
			dual = p.Dual[i]
		}
		fmt.Fprintf(&sb, "%s: sense=%d rhs=%g dual=%g\n", name, senseAt(m, i), atf(m.RHS, i), dual)
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write text snapshot: %w", err)
	}
	return nil
}

func columnLabel(m *lpmatrix.Matrix, i int) string {
	if i < len(m.ColNames) && m.ColNames[i] != "" {
		return m.ColNames[i]
	}
	return fmt.Sprintf("col[%d]", i)
}

func rowLabel(m *lpmatrix.Matrix, i int) string {
	if i < len(m.RowNames) && m.RowNames[i] != "" {
		return m.RowNames[i]
	}
	return fmt.Sprintf("row[%d]", i)
}

func atf(s []float64, i int) float64 {
	if i < len(s) {
		return s[i]
	}
	return 0
}

func senseAt(m *lpmatrix.Matrix, i int) lpmatrix.Sense {
	if i < len(m.Sense) {
		return m.Sense[i]
	}
	return lpmatrix.Equal
}
