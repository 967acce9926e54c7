package mdext_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/alnah/go-mdext"
)

// Example demonstrates parsing a document to HTML.
func Example() {
	engine, err := mdext.NewEngine()
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	content, err := engine.ParseString(context.Background(), "# Hello World\n\nThis is *a test*.\n")
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(content.Title)
	fmt.Println(strings.Contains(content.Body(), "<em>a test</em>"))
	// Output:
	// Hello World
	// true
}

// Example_metadata demonstrates reading the metadata header.
func Example_metadata() {
	engine, err := mdext.NewEngine()
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	content, err := engine.ParseString(context.Background(), "Title: Report\nAuthor: Ada\n\nBody.\n")
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	for _, key := range content.Metadata.Keys() {
		value, _ := content.Metadata.Get(key)
		fmt.Printf("%s=%s\n", key, value)
	}
	// Output:
	// title=Report
	// author=Ada
}

// shout upper-cases the text inside ==marks==.
type shout struct{}

func (shout) Transform(text string) (string, error) {
	for {
		start := strings.Index(text, "==")
		if start < 0 {
			return text, nil
		}
		end := strings.Index(text[start+2:], "==")
		if end < 0 {
			return text, nil
		}
		end += start + 2
		text = text[:start] + "<mark>" + strings.ToUpper(text[start+2:end]) + "</mark>" + text[end+2:]
	}
}

// Example_customFilter demonstrates adding a filter to span_gamut.
func Example_customFilter() {
	engine, err := mdext.NewEngine(
		mdext.WithFilter("Shout", func(mdext.Runtime) any { return shout{} }),
		mdext.WithStage("span_gamut", "filter:Shout", 60),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	out, err := engine.RunStage(context.Background(), "span_gamut", "say ==hello==")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(out)
	// Output: say <mark>HELLO</mark>
}

// Example_pool demonstrates parallel parsing with an EnginePool.
func Example_pool() {
	pool, err := mdext.NewEnginePool(2)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer pool.Close()

	docs := []string{"# One\n", "# Two\n", "# Three\n"}
	titles := make([]string, len(docs))

	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine := pool.Acquire()
			defer pool.Release(engine)

			content, err := engine.ParseString(context.Background(), doc)
			if err != nil {
				titles[i] = "error: " + err.Error()
				return
			}
			titles[i] = content.Title
		}()
	}
	wg.Wait()

	fmt.Println(strings.Join(titles, ", "))
	// Output: One, Two, Three
}
