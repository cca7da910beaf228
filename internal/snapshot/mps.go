package snapshot

import (
	"fmt"
	"strings"

	"github.com/aristath/adequacy-core/internal/lpmatrix"
	"github.com/aristath/adequacy-core/internal/weekly"
)

// FormatMPS renders p's matrix as free-form MPS text (spec §6 export_mps:
// "a portable textual form for external inspection"). This is a minimal
// free-form dialect covering ROWS/COLUMNS/RHS/BOUNDS — enough for a
// human or a third-party solver to load the matrix that produced a given
// result, not a byte-for-byte match of any particular vendor's writer.
func FormatMPS(p *weekly.Problem) []byte {
	m := p.Matrix
	var sb strings.Builder

	fmt.Fprintf(&sb, "NAME          WEEK_%04d_%02d_%s\n", p.Year, p.Week, shortRunID(p.RunID.String()))
	sb.WriteString("ROWS\n")
	sb.WriteString(" N  COST\n")
	for i := 0; i < m.NRows; i++ {
		fmt.Fprintf(&sb, " %s  %s\n", mpsSenseLetter(senseAt(m, i)), rowLabel(m, i))
	}

	sb.WriteString("COLUMNS\n")
	for j := 0; j < m.NCols; j++ {
		name := columnLabel(m, j)
		if cost := atf(m.Cost, j); cost != 0 {
			fmt.Fprintf(&sb, "    %s  COST  %.10g\n", name, cost)
		}
	}
	for i := 0; i < m.NRows; i++ {
		start := m.RowStart[i]
		end := m.RowStart[i+1]
		for k := start; k < end; k++ {
			col := m.ColIndex[k]
			fmt.Fprintf(&sb, "    %s  %s  %.10g\n", columnLabel(m, col), rowLabel(m, i), m.Coeff[k])
		}
	}

	sb.WriteString("RHS\n")
	for i := 0; i < m.NRows; i++ {
		if rhs := atf(m.RHS, i); rhs != 0 {
			fmt.Fprintf(&sb, "    RHS  %s  %.10g\n", rowLabel(m, i), rhs)
		}
	}

	sb.WriteString("BOUNDS\n")
	for j := 0; j < m.NCols; j++ {
		name := columnLabel(m, j)
		lo, hi := atf(m.XMin, j), atf(m.XMax, j)
		switch {
		case lo == 0 && hi == 0:
			fmt.Fprintf(&sb, " FX BND  %s  0\n", name)
		default:
			fmt.Fprintf(&sb, " LO BND  %s  %.10g\n", name, lo)
			fmt.Fprintf(&sb, " UP BND  %s  %.10g\n", name, hi)
		}
	}
	sb.WriteString("ENDATA\n")

	return []byte(sb.String())
}

func mpsSenseLetter(s lpmatrix.Sense) string {
	switch s {
	case lpmatrix.LessEqual:
		return "L"
	case lpmatrix.GreaterEqual:
		return "G"
	default:
		return "E"
	}
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
