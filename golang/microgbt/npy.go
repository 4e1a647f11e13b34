package microgbt

import (
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// LoadDense reads a NumPy .npy file into a *mat.Dense design matrix.
// Grounded on golang/extra_boost/ebl/ematrix.go's ReadNpy.
func LoadDense(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(InvalidShape, "opening %s: %v", path, err)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, newError(InvalidShape, "reading npy header from %s: %v", path, err)
	}

	m := &mat.Dense{}
	if err := r.Read(m); err != nil {
		return nil, newError(InvalidShape, "reading npy body from %s: %v", path, err)
	}
	return m, nil
}

// LoadVector reads a single-column .npy file and flattens it to []float64.
// Grounded on the same ReadNpy call used for the target column in
// golang/extra_boost/ebl/ematrix.go's ReadEMatrix.
func LoadVector(path string) ([]float64, error) {
	m, err := LoadDense(path)
	if err != nil {
		return nil, err
	}
	rows, cols := m.Dims()
	if cols != 1 {
		return nil, newError(InvalidShape, "%s has %d columns, expected 1", path, cols)
	}
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = m.At(i, 0)
	}
	return out, nil
}

// DumpDense writes m to path in NumPy .npy format. Grounded on the
// npyio.Write calls in golang/extra_boost/extra_boost_main/main.go used to
// dump predictions and learning curves.
func DumpDense(path string, m *mat.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return newError(InvalidShape, "creating %s: %v", path, err)
	}
	defer f.Close()

	if err := npyio.Write(f, m); err != nil {
		return newError(InvalidShape, "writing npy body to %s: %v", path, err)
	}
	return nil
}
