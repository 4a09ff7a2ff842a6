package sema

import "github.com/thsl-lang/thslc/ir"

// intrinsicEntry pairs an intrinsic with its IR math function and the
// total number of arguments a call to it takes.
type intrinsicEntry struct {
	fun   ir.MathFunction
	arity int // total argument count
}

// thslIntrinsics maps THSL's float/signed/unsigned-prefixed intrinsic
// function names to IR math functions.
var thslIntrinsics = map[string]intrinsicEntry{
	"round":     {ir.MathRound, 1},
	"roundeven": {ir.MathRound, 1},
	"trunc":     {ir.MathTrunc, 1},
	"fabs":      {ir.MathAbs, 1},
	"sabs":      {ir.MathAbs, 1},
	"fsign":     {ir.MathSign, 1},
	"ssign":     {ir.MathSign, 1},
	"floor":     {ir.MathFloor, 1},
	"ceil":      {ir.MathCeil, 1},
	"fract":     {ir.MathFract, 1},
	"radians":   {ir.MathRadians, 1},
	"degrees":   {ir.MathDegrees, 1},

	"sin":   {ir.MathSin, 1},
	"cos":   {ir.MathCos, 1},
	"tan":   {ir.MathTan, 1},
	"asin":  {ir.MathAsin, 1},
	"acos":  {ir.MathAcos, 1},
	"atan":  {ir.MathAtan, 1},
	"sinh":  {ir.MathSinh, 1},
	"cosh":  {ir.MathCosh, 1},
	"tanh":  {ir.MathTanh, 1},
	"asinh": {ir.MathAsinh, 1},
	"acosh": {ir.MathAcosh, 1},
	"atanh": {ir.MathAtanh, 1},
	"atan2": {ir.MathAtan2, 2},

	"pow":  {ir.MathPow, 2},
	"exp":  {ir.MathExp, 1},
	"log":  {ir.MathLog, 1},
	"exp2": {ir.MathExp2, 1},
	"log2": {ir.MathLog2, 1},

	"sqrt":    {ir.MathSqrt, 1},
	"invsqrt": {ir.MathInverseSqrt, 1},

	"determinant": {ir.MathDeterminant, 1},
	"inverse":     {ir.MathInverse, 1},

	"modf":  {ir.MathModf, 1},
	"frexp": {ir.MathFrexp, 1},
	"ldexp": {ir.MathLdexp, 2},

	"fmin": {ir.MathMin, 2},
	"umin": {ir.MathMin, 2},
	"smin": {ir.MathMin, 2},
	"fmax": {ir.MathMax, 2},
	"umax": {ir.MathMax, 2},
	"smax": {ir.MathMax, 2},

	"fclamp": {ir.MathClamp, 3},
	"uclamp": {ir.MathClamp, 3},
	"sclamp": {ir.MathClamp, 3},

	"fmix": {ir.MathMix, 3},
	"step": {ir.MathStep, 2},
	"sstep": {ir.MathSmoothStep, 3},
	"fma":   {ir.MathFma, 3},

	"length":     {ir.MathLength, 1},
	"distance":   {ir.MathDistance, 2},
	"cross":      {ir.MathCross, 2},
	"normalize":  {ir.MathNormalize, 1},
	"fforward":   {ir.MathFaceForward, 3},
	"reflect":    {ir.MathReflect, 2},
	"refract":    {ir.MathRefract, 3},
}

// lowerIntrinsicCall builds an ExprMath node for a THSL intrinsic,
// dispatching on argument count into the Arg/Arg1/Arg2/Arg3 slots.
func (a *analyzer) lowerIntrinsicCall(entry intrinsicEntry, args []ir.ExpressionHandle) (ir.ExpressionHandle, error) {
	math := ir.ExprMath{Fun: entry.fun, Arg: args[0]}
	if len(args) > 1 {
		math.Arg1 = &args[1]
	}
	if len(args) > 2 {
		math.Arg2 = &args[2]
	}
	if len(args) > 3 {
		math.Arg3 = &args[3]
	}
	return a.addExpression(ir.Expression{Kind: math}), nil
}
