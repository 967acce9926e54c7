// Package gamut resolves stage names to rules and runs gamut stacks.
//
// A stack is a configured list of stages with integer priorities. Stages are
// run lowest priority first, ties in declaration order, each receiving the
// previous stage's output. A stage name is one of:
//
//	block_gamut            another stack
//	filter:Header          a filter, default method Transform
//	filter:Note:strip      a named method of a filter
//	tool:Outdent           a tool, default method Run
//	mdext/tool.Outdent:run any registered rule by qualified name
//
// Rules are registered as factories under qualified names and created at
// most once per Dispatcher.
package gamut
