// Package viz renders real lattice fields, such as a stamped particle
// density or phase, in the terminal.
//
//   - [Canvas]: Braille dot canvas, 2x4 dots per character cell
//   - [Contour]: marks every dot whose field value reaches a level
//   - [Heatmap]: shaded block characters coloured along a [Theme] ramp
package viz
