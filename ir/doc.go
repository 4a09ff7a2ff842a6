// The IR is designed to be:
//   - Complete: can represent every THSL feature sema lowers
//   - Efficient: arena-indexed, so expressions and types are handles,
//     not pointers, and deduplicate automatically
//
// # Structure
//
// The IR is organized around a Module type that contains:
//   - Types: All type definitions used in the shader
//   - Constants: Module-scope constant values
//   - GlobalVariables: Module-scope variables (uniforms, storage, etc.)
//   - Functions: All function definitions
//   - EntryPoints: Shader entry points with stage information
//
// # Translation Pipeline
//
//	THSL source → AST (ast) → IR (ir, this package) → SPIR-V (spirv)
//
// # References
//
//   - SPIR-V specification: https://www.khronos.org/registry/SPIR-V/
package ir
