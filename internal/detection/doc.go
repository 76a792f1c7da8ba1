// Package detection finds the provinces of a hand-drawn map.
//
// A map is a bitmap where every province is filled with a flat colour and
// provinces are separated by lines drawn in the border colour (pure black).
// Detection groups the pixels of each province into a Shape, gives it a
// display colour no other shape uses, and folds every border pixel into one
// of the neighbouring shapes so that nothing is left over.
//
// # Algorithm Overview
//
// Detection is connected-component labelling in three passes, each a full
// raster scan (left to right, top to bottom):
//
//  1. Scanning: every non-border pixel gets a provisional label. It reuses
//     the label of its left or upper neighbour when that neighbour has the
//     same colour, and takes a fresh label otherwise. When both neighbours
//     carry different labels the two are recorded as equivalent in a
//     LabelResolver.
//  2. Resolving: each label is replaced by the root of its equivalence set.
//     The first pixel of each root creates a Shape.
//  3. Merging: each border pixel joins the shape of its left neighbour, else
//     its upper neighbour, else the next non-border pixel in raster order.
//     Only when all three are border does it take the shape its left or
//     upper neighbour joined earlier in the same pass.
//
// Only the left and upper neighbours are inspected, so two same-coloured
// regions that meet only at a corner become separate shapes.
//
// # Coordinate System
//
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - A BoundingBox holds the smallest coordinates in BottomLeft and the
//     largest in TopRight, both inclusive
//
// # Failures
//
// A pixel whose colour differs from its left or upper neighbour is logged,
// counted in Result.ProblemPixels, and that neighbour is treated as border.
// An image that is entirely border has no shape for its border pixels to
// join and fails with ErrNoNonBorderPixel.
//
// # Validation
//
// Validator applies the province rules after detection: a shape needs more
// than MinShapeSize pixels, and its bounding box may not exceed 1/8 of the
// image in either dimension. Both produce warnings, never errors.
package detection
