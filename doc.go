package oamap

// Package oamap provides:
//
// - A schema of nested types (Primitive, List, Union, Record, Tuple, Pointer) mapped onto flat columnar arrays
// - A compiler producing an immutable Tree with every array name finalized
// - Lazy resolution of (type, position) against named arrays, with list/record/tuple views
// - A stable error model via Issues (path, code, message) shared by compile and resolution
//
// Design policy:
// - Keep only public APIs in the root package; put naming and slicing details under internal/.
// - Place the rewriting capability interface under capability/, schema documents under schemadoc/,
//   the Arrow-backed array provider under arrowarrays/, and the CLI under cmd/oamap.
// - Views never copy array contents; arrays are read-only once bound.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  tree, err := oamap.Compile(&oamap.List{Content: &oamap.Primitive{DType: oamap.Float64}})
//  bag := oamap.Bind(tree, oamap.MapArrays{
//      "object-B":  oamap.Values[int64]{0},
//      "object-E":  oamap.Values[int64]{3},
//      "object-L":  oamap.Values[float64]{1.1, 2.2, 3.3},
//  }, nil)
//  v, err := bag.Get(0)            // oamap.ListView of length 3
//  x, err := v.(oamap.ListView).Get(-1) // 3.3
