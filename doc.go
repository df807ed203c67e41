// Package vortex compiles and runs programs written in Vortex, a small
// statically-declared scripting language.
//
// Source is tokenized, parsed by recursive descent into a syntax tree,
// compiled to a compact bytecode and executed on a stack virtual machine.
// Vortex has Bool, Float and String values plus nil, global and
// block-scoped variables, if/else, while and print:
//
//	count : Float -> 3;
//	while count > 0 {
//	    print count;
//	    count -> count - 1;
//	}
//
// # Quick Start
//
// For simple one-off execution:
//
//	output, err := vortex.Run(`print 1 + 2 * 3;`, nil)
//
// # Compiled Programs
//
// For repeated execution of the same program:
//
//	prog, err := vortex.Compile(source, &vortex.Config{Filename: "main.vrtx"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	output, err := prog.Run(nil)
//
// Compiled programs can be saved with [Program.MarshalBinary] and read back
// with [Load], skipping parsing and code generation.
//
// # Interactive Use
//
// A [Session] compiles and runs source chunk by chunk, keeping globals
// between chunks. The vortex command uses it for its prompt.
//
// # Error Handling
//
// Errors are returned as specific types for detailed handling:
//   - [ParseError]: syntax errors in Vortex source
//   - [CompileError]: errors found during code generation
//   - [RuntimeError]: errors during execution
//
// Compile reports every syntax and compile error it finds, combined into one
// error; use errors.As to inspect individual errors. Statements with errors
// are dropped and the rest of the program still compiles and runs.
//
// # Thread Safety
//
// Compiled [Program] objects are safe for concurrent use.
// Each call to [Program.Run] creates an independent execution context.
// A [Session] must not be used concurrently.
package vortex
