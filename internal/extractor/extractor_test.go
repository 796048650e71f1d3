package extractor

import (
	"context"
	"fmt"
	"sync"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

func TestNew(t *testing.T) {
	e := New()
	assert.NotNil(t, e)
	assert.Equal(t, 0, e.CacheSize())
}

func TestExtract_EmptyCode(t *testing.T) {
	e := New()

	features, err := e.Extract(context.Background(), "   \n\t  ", "javascript", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, types.LangJavaScript, features.Language)
	assert.Equal(t, 0, features.TagCount())
	assert.Equal(t, 1, features.Complexity.Cyclomatic)
	assert.Equal(t, 0, features.Complexity.Cognitive)
	assert.Equal(t, 0, features.Complexity.LineCount)

	require.Len(t, features.Diagnostics, 1)
	assert.Equal(t, types.DiagEmptySnippet, features.Diagnostics[0].Kind)
}

func TestExtract_UnsupportedLanguage(t *testing.T) {
	e := New()

	_, err := e.Extract(context.Background(), "puts 'hi'", "ruby", DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnsupportedLanguage)
}

func TestExtract_JavaScriptAsyncFetch(t *testing.T) {
	code := `async function load(url) {
  try {
    const res = await fetch(url);
    return await res.json();
  } catch (err) {
    console.error(err);
    return null;
  }
}`

	e := New()
	features, err := e.Extract(context.Background(), code, "javascript", DefaultOptions())
	require.NoError(t, err)

	assert.True(t, features.Syntax.Has("function-declaration"))
	assert.True(t, features.Syntax.Has("async-function"))
	assert.True(t, features.Syntax.Has("await-expression"))
	assert.True(t, features.Syntax.Has("const-declaration"))
	assert.True(t, features.Syntax.Has("try-catch"))

	assert.True(t, features.Patterns.Has("async-await"))
	assert.True(t, features.Patterns.Has("error-handling"))

	assert.True(t, features.APIs.Has("fetch"))
	assert.True(t, features.APIs.Has("console.error"))
	assert.True(t, features.APIs.Has("res.json"))

	// Base path plus the catch clause.
	assert.Equal(t, 2, features.Complexity.Cyclomatic)

	assert.Equal(t, "load", features.Context.FunctionName)
	assert.True(t, features.Context.HasReturn)
	assert.False(t, features.Degraded())
}

func TestExtract_Idempotent(t *testing.T) {
	code := `const xs = [1, 2, 3].map(x => x * 2);`

	e := New()
	first, err := e.Extract(context.Background(), code, "javascript", DefaultOptions())
	require.NoError(t, err)
	second, err := e.Extract(context.Background(), code, "javascript", DefaultOptions())
	require.NoError(t, err)

	assert.True(t, first.Syntax.Equal(second.Syntax))
	assert.True(t, first.Patterns.Equal(second.Patterns))
	assert.True(t, first.APIs.Equal(second.APIs))
	assert.True(t, first.Concepts.Equal(second.Concepts))
	assert.Equal(t, first.Complexity, second.Complexity)
	assert.Equal(t, 1, e.CacheSize())
}

func TestExtract_MalformedCode(t *testing.T) {
	e := New()

	features, err := e.Extract(context.Background(), "const = {{{ ]", "javascript", DefaultOptions())
	require.NoError(t, err, "malformed code degrades, never fails")

	assert.Equal(t, 0, features.TagCount())
	assert.Equal(t, 1, features.Complexity.Cyclomatic)
	assert.True(t, features.Degraded())

	kinds := diagnosticKinds(features)
	assert.Contains(t, kinds, types.DiagParseFailure)
}

func TestExtract_BareFragmentsParseDirectly(t *testing.T) {
	e := New()

	// The grammars are fault-tolerant and accept function-body fragments at
	// top level, so these parse bare, without the synthetic wrapper.
	t.Run("javascript return fragment", func(t *testing.T) {
		features, err := e.Extract(context.Background(), "return fetch(url);", "javascript", DefaultOptions())
		require.NoError(t, err)

		assert.NotContains(t, diagnosticKinds(features), types.DiagWrappedParse)
		assert.False(t, features.Degraded())
		assert.True(t, features.APIs.Has("fetch"))
		assert.True(t, features.Context.HasReturn)
	})

	t.Run("python indented fragment", func(t *testing.T) {
		features, err := e.Extract(context.Background(), "    x = 1\n    return x", "python", DefaultOptions())
		require.NoError(t, err)

		assert.NotContains(t, diagnosticKinds(features), types.DiagWrappedParse)
		assert.False(t, features.Degraded())
		assert.Equal(t, 1, features.Complexity.Cyclomatic)
		assert.True(t, features.Syntax.Has("assignment"))
		assert.True(t, features.Context.HasReturn)
	})
}

func TestParseResilient_WrapperMachinery(t *testing.T) {
	an := newJavaScriptAnalyzer()

	// The wrapped re-parse only fires when the bare parse leaves error
	// nodes, which the fault-tolerant grammars rarely produce. Exercise the
	// wrapper plumbing directly so its contract stays covered.
	t.Run("wrapper node excluded from tags", func(t *testing.T) {
		src := []byte(an.wrap("const x = 1;"))
		parser := sitter.NewParser()
		parser.SetLanguage(an.sitterLang)
		tree, err := parser.ParseCtx(context.Background(), nil, src)
		require.NoError(t, err)
		defer tree.Close()
		require.False(t, tree.RootNode().HasError())

		synthetic := an.findWrapperNode(tree.RootNode())
		require.NotNil(t, synthetic)
		assert.Equal(t, "function_declaration", synthetic.Type())

		tags, err := an.collectSyntax(context.Background(), tree.RootNode(), src, synthetic)
		require.NoError(t, err)
		assert.True(t, tags.Has("const-declaration"))
		assert.False(t, tags.Has("function-declaration"),
			"synthetic wrapper must not leak into tags")

		cctx := an.collectContext(tree.RootNode(), src, synthetic)
		assert.Empty(t, cctx.FunctionName)
	})

	t.Run("unparseable both ways yields no tree", func(t *testing.T) {
		_, tree, synthetic, diags := an.parseResilient(context.Background(), "const = {{{ ]")
		assert.Nil(t, tree)
		assert.Nil(t, synthetic)
		require.NotEmpty(t, diags)
		assert.Equal(t, types.DiagParseFailure, diags[0].Kind)
	})
}

func TestExtract_ConcurrentCalls(t *testing.T) {
	e := New()

	// One snippet triggers the hoisting heuristic, the other must not; the
	// per-call tracker state has to stay isolated under concurrency.
	hoisting := "console.log(counter);\nvar counter = 1;"
	clean := "function add(a, b) { return a + b; }\nconst total = add(2, 3);"

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 4; j++ {
				// Unique suffixes defeat the content-hash cache so every
				// call runs a full extraction.
				salt := fmt.Sprintf("\n// %d-%d", id, j)
				h, err := e.Extract(context.Background(), hoisting+salt, "javascript", DefaultOptions())
				if err != nil || !h.Concepts.Has("hoisting") {
					errs <- "hoisting snippet lost its hoisting concept"
					return
				}
				c, err := e.Extract(context.Background(), clean+salt, "javascript", DefaultOptions())
				if err != nil || c.Concepts.Has("hoisting") {
					errs <- "clean snippet picked up a foreign hoisting concept"
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}

func TestExtract_JavaScriptComplexity(t *testing.T) {
	code := `function grade(scores) {
  let total = 0;
  for (const s of scores) {
    if (s > 50 && s < 100) {
      total += s;
    }
  }
  return total;
}`

	e := New()
	features, err := e.Extract(context.Background(), code, "javascript", DefaultOptions())
	require.NoError(t, err)

	// 1 base + for-of + if + logical and.
	assert.Equal(t, 4, features.Complexity.Cyclomatic)
	// Loop at depth 1 scores 2*2, the nested if at depth 2 scores 1*3.
	assert.Equal(t, 7, features.Complexity.Cognitive)
	assert.Equal(t, 3, features.Complexity.MaxDepth)
	assert.Equal(t, 9, features.Complexity.LineCount)

	assert.True(t, features.Syntax.Has("for-of-loop"))
	assert.True(t, features.Syntax.Has("if-statement"))
	assert.True(t, features.Syntax.Has("logical-operator"))
	assert.True(t, features.Syntax.Has("augmented-assignment"))
}

func TestExtract_ArrayTransformChain(t *testing.T) {
	code := `const result = numbers.map(x => x * 2).filter(x => x > 5);`

	e := New()
	features, err := e.Extract(context.Background(), code, "javascript", DefaultOptions())
	require.NoError(t, err)

	assert.True(t, features.Patterns.Has("array-transform-chain"))
	assert.True(t, features.Patterns.Has("callback"))
	assert.True(t, features.Patterns.Has("higher-order-function"))
	assert.True(t, features.Syntax.Has("arrow-function"))
	assert.True(t, features.APIs.Has("numbers.map"))
	assert.True(t, features.APIs.Has("filter"))
}

func TestExtract_SingleMapIsNotAChain(t *testing.T) {
	code := `const doubled = numbers.map(x => x * 2);`

	e := New()
	features, err := e.Extract(context.Background(), code, "javascript", DefaultOptions())
	require.NoError(t, err)

	assert.False(t, features.Patterns.Has("array-transform-chain"))
	assert.True(t, features.Patterns.Has("callback"))
}

func TestExtract_PromiseChain(t *testing.T) {
	code := `fetch(url)
  .then(res => res.json())
  .catch(err => console.error(err));`

	e := New()
	features, err := e.Extract(context.Background(), code, "javascript", DefaultOptions())
	require.NoError(t, err)

	assert.True(t, features.Patterns.Has("promise-chain"))
	assert.True(t, features.Patterns.Has("error-handling"))
	assert.True(t, features.Patterns.Has("callback"))
	assert.True(t, features.APIs.Has("fetch"))
}

func TestExtract_JavaScriptClosure(t *testing.T) {
	code := `function counter() {
  let count = 0;
  return function () {
    count += 1;
    return count;
  };
}`

	e := New()
	features, err := e.Extract(context.Background(), code, "javascript", DefaultOptions())
	require.NoError(t, err)

	assert.True(t, features.Concepts.Has("closure"))
	assert.True(t, features.Patterns.Has("higher-order-function"))
}

func TestExtract_TypeScriptSyntax(t *testing.T) {
	code := `interface User {
  name: string;
}
const greet = (user: User): string => ` + "`Hello, ${user.name}`" + `;`

	e := New()
	features, err := e.Extract(context.Background(), code, "typescript", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, types.LangTypeScript, features.Language)
	assert.True(t, features.Syntax.Has("interface-declaration"))
	assert.True(t, features.Syntax.Has("type-annotation"))
	assert.True(t, features.Syntax.Has("arrow-function"))
	assert.True(t, features.Syntax.Has("template-literal"))
}

func TestExtract_PythonFeatures(t *testing.T) {
	code := `import json

def load(path):
    with open(path) as f:
        data = json.load(f)
    return [x * 2 for x in data if x > 0]`

	e := New()
	features, err := e.Extract(context.Background(), code, "python", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, types.LangPython, features.Language)
	assert.True(t, features.Syntax.Has("import-statement"))
	assert.True(t, features.Syntax.Has("function-declaration"))
	assert.True(t, features.Syntax.Has("with-statement"))
	assert.True(t, features.Patterns.Has("context-manager"))
	assert.True(t, features.Patterns.Has("comprehension"))
	assert.True(t, features.APIs.Has("open"))
	assert.True(t, features.APIs.Has("json.load"))
	assert.Equal(t, "load", features.Context.FunctionName)
}

func TestExtract_PythonRecursion(t *testing.T) {
	code := `def fact(n):
    if n <= 1:
        return 1
    return n * fact(n - 1)`

	e := New()
	features, err := e.Extract(context.Background(), code, "python", DefaultOptions())
	require.NoError(t, err)

	assert.True(t, features.Concepts.Has("recursion"))
}

func TestExtract_PythonInheritance(t *testing.T) {
	code := `class Dog(Animal):
    def speak(self):
        return "woof"`

	e := New()
	features, err := e.Extract(context.Background(), code, "python", DefaultOptions())
	require.NoError(t, err)

	assert.True(t, features.Patterns.Has("class"))
	assert.True(t, features.Patterns.Has("inheritance"))
	assert.True(t, features.Context.UsesThis)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		code string
		want types.Language
	}{
		{name: "python def", code: "def add(a, b):\n    return a + b", want: types.LangPython},
		{name: "python import", code: "import os\nos.getcwd()", want: types.LangPython},
		{name: "typescript interface", code: "interface Point { x: number; }", want: types.LangTypeScript},
		{name: "typescript annotation", code: "const n: number = 1;", want: types.LangTypeScript},
		{name: "javascript arrow", code: "const f = () => 1;", want: types.LangJavaScript},
		{name: "ambiguous defaults to javascript", code: "a + b", want: types.LangJavaScript},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.code))
		})
	}
}

func diagnosticKinds(f *types.CodeFeatures) []types.DiagnosticKind {
	kinds := make([]types.DiagnosticKind, 0, len(f.Diagnostics))
	for _, d := range f.Diagnostics {
		kinds = append(kinds, d.Kind)
	}
	return kinds
}
