// Package main is a cgo bridge exposing microGBT training and prediction to
// a host runtime by opaque handle. This is the "language binding" spec.md
// §1 scopes out of the learner-core specification; ambient peripheral
// collaborators are carried regardless, and
// golang/poisson_legacy/pybridge/main.go supplies a directly adaptable
// pattern: an opaque uint64 handle map guarded by a mutex,
// setLastError/GetLastError for cross-language error propagation, and
// unsafe.Slice zero-copy buffer views instead of per-element cgo calls.
package main

/*
#cgo CFLAGS: -I.
#include <stdlib.h>
*/
import "C"

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/tarstars/microgbt/golang/microgbt"
	"gonum.org/v1/gonum/mat"
)

var (
	handleMu   sync.Mutex
	nextHandle uint64 = 1
	models            = make(map[uint64]*microgbt.GBT)

	lastErrorMu sync.Mutex
	lastError   string
)

func setLastError(err error) {
	lastErrorMu.Lock()
	defer lastErrorMu.Unlock()
	if err != nil {
		lastError = err.Error()
	} else {
		lastError = ""
	}
}

func getLastError() string {
	lastErrorMu.Lock()
	defer lastErrorMu.Unlock()
	return lastError
}

func storeModel(m *microgbt.GBT) uint64 {
	handleMu.Lock()
	defer handleMu.Unlock()
	handle := nextHandle
	models[handle] = m
	nextHandle++
	return handle
}

func fetchModel(handle uint64) (*microgbt.GBT, error) {
	handleMu.Lock()
	defer handleMu.Unlock()
	m, ok := models[handle]
	if !ok {
		return nil, errors.New("invalid model handle")
	}
	return m, nil
}

func copyFloatSlice(ptr *C.double, length int) ([]float64, error) {
	if length < 0 {
		return nil, errors.New("negative length")
	}
	if length == 0 {
		return nil, nil
	}
	if ptr == nil {
		return nil, errors.New("null pointer for non-empty slice")
	}
	src := unsafe.Slice((*float64)(unsafe.Pointer(ptr)), length)
	dst := make([]float64, length)
	copy(dst, src)
	return dst, nil
}

func buildDense(ptr *C.double, rows, cols C.int) (*mat.Dense, error) {
	r, c := int(rows), int(cols)
	if r < 0 || c < 0 {
		return nil, errors.New("invalid matrix dimensions")
	}
	data, err := copyFloatSlice(ptr, r*c)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(r, c, data), nil
}

func buildParams(namesPtr **C.char, valuesPtr *C.double, count C.int) (map[string]float64, error) {
	n := int(count)
	if n < 0 {
		return nil, errors.New("negative param count")
	}
	if n == 0 {
		return nil, nil
	}
	if namesPtr == nil || valuesPtr == nil {
		return nil, errors.New("null pointer for non-empty param list")
	}
	names := unsafe.Slice(namesPtr, n)
	values := unsafe.Slice((*float64)(unsafe.Pointer(valuesPtr)), n)

	params := make(map[string]float64, n)
	for i := 0; i < n; i++ {
		params[C.GoString(names[i])] = values[i]
	}
	return params, nil
}

//export MicrogbtTrainModel
func MicrogbtTrainModel(
	trainXPtr *C.double, trainRows, trainCols C.int,
	trainYPtr *C.double,
	validXPtr *C.double, validRows C.int,
	validYPtr *C.double,
	paramNamesPtr **C.char, paramValuesPtr *C.double, paramCount C.int,
	numBoostRound C.int,
	earlyStoppingRounds C.int,
) C.ulonglong {
	setLastError(nil)

	trainX, err := buildDense(trainXPtr, trainRows, trainCols)
	if err != nil {
		setLastError(err)
		return 0
	}
	trainY, err := copyFloatSlice(trainYPtr, int(trainRows))
	if err != nil {
		setLastError(err)
		return 0
	}
	validX, err := buildDense(validXPtr, validRows, trainCols)
	if err != nil {
		setLastError(err)
		return 0
	}
	validY, err := copyFloatSlice(validYPtr, int(validRows))
	if err != nil {
		setLastError(err)
		return 0
	}
	params, err := buildParams(paramNamesPtr, paramValuesPtr, paramCount)
	if err != nil {
		setLastError(err)
		return 0
	}

	model, err := microgbt.New(params)
	if err != nil {
		setLastError(err)
		return 0
	}

	if err := model.Train(trainX, trainY, validX, validY, int(numBoostRound), int(earlyStoppingRounds)); err != nil {
		setLastError(err)
		return 0
	}

	return C.ulonglong(storeModel(model))
}

//export MicrogbtPredict
func MicrogbtPredict(
	handle C.ulonglong,
	xPtr *C.double, rows, cols C.int,
	numIterations C.int,
	outputPtr *C.double,
) C.int {
	setLastError(nil)

	model, err := fetchModel(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}

	x, err := buildDense(xPtr, rows, cols)
	if err != nil {
		setLastError(err)
		return 2
	}

	out := unsafe.Slice((*float64)(unsafe.Pointer(outputPtr)), int(rows))
	for i := 0; i < int(rows); i++ {
		p, err := model.Predict(x.RawRowView(i), int(numIterations))
		if err != nil {
			setLastError(err)
			return 3
		}
		out[i] = p
	}
	return 0
}

//export MicrogbtFreeModel
func MicrogbtFreeModel(handle C.ulonglong) {
	handleMu.Lock()
	defer handleMu.Unlock()
	delete(models, uint64(handle))
}

//export GetLastError
func GetLastError() *C.char {
	errStr := getLastError()
	if errStr == "" {
		return nil
	}
	return C.CString(errStr)
}

//export FreeCString
func FreeCString(str *C.char) {
	if str != nil {
		C.free(unsafe.Pointer(str))
	}
}

func main() {}
