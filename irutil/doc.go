// Package irutil provides the graph operations on llir modules that the merge
// needs but llir itself does not offer: module cloning, use walking and
// remapping, replace-all-uses-with, and a cross-module mover that imports
// function definitions from one module into another.
//
// llir keeps no use lists, so every use query here is a walk over the module:
// instruction and terminator operand slots (via their Operands method), global
// initializers, alias and ifunc targets, and the constant operands of function
// headers (personality, prefix and prologue).  Constant expressions are walked
// field by field so that references nested in getelementptr or bitcast
// expressions are found as well.
package irutil
