/*

Process of compilation

FlowScript Source ->
	parse ->
Abstract Syntax Tree (ast) ->
	analyze ->
	generate ->
Intermediate Representation (ir) ->
	interpret ->
Program Output

There is no assembly/link stage: FlowScript targets the reference
interpreter in compiler/back rather than a real machine, so "generate"
produces a fully verified ir.Module directly usable by it.

*/
package compiler
