// Package mdext converts Markdown Extended documents to HTML through a
// staged pipeline of named grammar rules.
//
// # Quick Start
//
// Create an engine and parse a document:
//
//	engine, err := mdext.NewEngine()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	content, err := engine.ParseString(ctx, "# Hello\n\nSome *text*.")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(content.Body())
//
// Besides the body, a parse fills content.Title (the metadata title, or the
// first h1), content.Metadata and content.Notes.
//
// # Gamuts
//
// A gamut is a named stack of stages, each with a priority. Stages run in
// ascending priority; equal priorities keep their configured order. A stage
// is one of:
//
//	block_gamut            another stack
//	filter:Emphasis        a filter, default method
//	filter:Note:append     a filter method
//	tool:Outdent           a tool
//	acme/rules.Smiley      a rule registered under a qualified name
//
// A parse runs transform_gamut on the source (normalising line endings and
// tabs, protecting raw HTML), then document_gamut, or special_gamut when one
// is configured.
//
// # Protection
//
// Rules replace finished HTML with opaque hash tokens so later rules leave
// it alone. The tokens are resolved by the last stage of document_gamut
// ("tool:HTML:unhash").
//
// # Configuration
//
// The built-in configuration can be replaced or extended with YAML:
//
//	engine, err := mdext.NewEngine(
//	    mdext.WithConfigFile("mdext.yaml"),
//	    mdext.WithSkipFilters("Emphasis"),
//	    mdext.WithSetting("tab_width", 2),
//	)
//
// In a config file, a key prefixed with "+" merges into the built-in value
// instead of replacing it:
//
//	+span_gamut:
//	  "acme/rules.Smiley": 60
//
// # Custom Rules
//
// A rule is any value implementing Filter or Tool. It may also implement
// MethodSet for extra named methods and SetupHook/TeardownHook for
// per-parse state:
//
//	engine, err := mdext.NewEngine(
//	    mdext.WithFilter("Smiley", func(rt mdext.Runtime) any {
//	        return smiley{rt: rt}
//	    }),
//	    mdext.WithStage("span_gamut", "filter:Smiley", 60),
//	)
//
// # Parallel Processing
//
// An Engine parses one document at a time. For batch work, use an
// EnginePool:
//
//	pool, err := mdext.NewEnginePool(mdext.ResolvePoolSize(0))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
//	engine := pool.Acquire()
//	defer pool.Release(engine)
//	content, err := engine.ParseFile(ctx, "README.md")
package mdext
