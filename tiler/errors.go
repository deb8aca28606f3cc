package tiler

import "errors"

var (
	errNotLinear     = errors.New("tiler: LinearTiler cannot lay out a macro-tiled array mode")
	errUnknownFormat = errors.New("tiler: unknown data format has no defined element size")
)
