package seht

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chrisuehlinger/seht/dom"
)

const fixture = `<!DOCTYPE html><html><head><title>t</title></head><body>` +
	`<h1 id="title">Title</h1>` +
	`<ul id="a"><li>1</li><li>2</li><li>3</li></ul>` +
	`<ul id="b"><li>4</li><li>5</li></ul>` +
	`<p class="x">p</p>` +
	`</body></html>`

func newTestSeht(t *testing.T, opts ...Option) *Seht {
	t.Helper()
	doc, err := dom.ParseHTML(fixture)
	require.NoError(t, err)
	return New(doc, opts...)
}

func texts(c *Collection) []string {
	var out []string
	c.Each(func(n *dom.Node, _ int, _ []*dom.Node) {
		out = append(out, n.TextContent())
	})
	return out
}

func TestResolveEmpty(t *testing.T) {
	s := newTestSeht(t)

	for name, sel := range map[string]Selector{
		"nil":            nil,
		"empty query":    Query(""),
		"nil node":       Node(nil),
		"nil element":    Element(nil),
		"nil list":       List(nil),
		"empty nodes":    Nodes{},
		"nil nodes":      Nodes{nil, nil},
		"invalid":        From(42),
		"nil collection": (*Collection)(nil),
	} {
		t.Run(name, func(t *testing.T) {
			c := s.Find(sel)
			assert.Equal(t, 0, c.Len())
			assert.Nil(t, c.Get(0))
			assert.Equal(t, 0, c.First().Len())
			assert.Equal(t, 0, c.Last().Len())
			assert.Nil(t, c.First().Get(0))
		})
	}
}

func TestResolveDedupe(t *testing.T) {
	s := newTestSeht(t)
	li := s.Query("li").ToArray()
	require.Len(t, li, 5)
	a, b, c := li[0], li[1], li[2]

	got := s.Find(Nodes{a, b, a, c, b}).ToArray()
	assert.Equal(t, []*dom.Node{a, b, c}, got)

	assert.Equal(t, []*dom.Node{a, b, c}, Unique([]*dom.Node{a, nil, b, a, c, b}))
	assert.Nil(t, Unique(nil))
	assert.Nil(t, Unique([]*dom.Node{nil}))
}

func TestResolveSingleNodes(t *testing.T) {
	s := newTestSeht(t)
	doc := s.Document()

	h1 := doc.GetElementById("title")
	assert.Equal(t, []*dom.Node{h1.AsNode()}, s.Find(Element(h1)).ToArray())
	assert.Equal(t, []*dom.Node{doc.AsNode()}, s.Find(From(doc)).ToArray())

	win := doc.DefaultView()
	c := s.Find(Window(win))
	require.Equal(t, 1, c.Len())
	assert.Equal(t, dom.WindowNode, c.Get(0).NodeType())
}

func TestResolveQueryDispatch(t *testing.T) {
	s := newTestSeht(t)

	t.Run("id", func(t *testing.T) {
		c := s.Query("#title")
		require.Equal(t, 1, c.Len())
		assert.Equal(t, "Title", c.Text())
	})

	t.Run("missing id yields empty", func(t *testing.T) {
		c := s.Query("#nope")
		assert.Equal(t, 0, c.Len())
		assert.Nil(t, c.Get(0))
	})

	t.Run("selector", func(t *testing.T) {
		assert.Equal(t, 3, s.Query("li", Query("#a")).Len())
		assert.Equal(t, []string{"1", "2", "3", "4", "5"}, texts(s.Query("li")))
	})

	t.Run("markup", func(t *testing.T) {
		c := s.Query("<i></i><i></i><i></i>")
		assert.Equal(t, 3, c.Len())
		for _, n := range c.ToArray() {
			assert.False(t, s.Document().AsNode().Contains(n), "constructed nodes must not be in the live document")
		}
	})

	t.Run("markup drops top-level text", func(t *testing.T) {
		c := s.Query("  <b>x</b> tail <i>y</i>")
		assert.Equal(t, []string{"x", "y"}, texts(c))
	})

	t.Run("script in markup is inert", func(t *testing.T) {
		c := s.Query(`<script>throw 1</script><p>ok</p>`)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("invalid selector fails open", func(t *testing.T) {
		assert.Equal(t, 0, s.Query("li[").Len())
		assert.Equal(t, 0, s.Query(">>>").Len())
	})
}

func TestResolveIDUnderElementContext(t *testing.T) {
	s := newTestSeht(t)
	doc := s.Document()
	body := doc.Body()

	// Elements have no id lookup; the query falls through to a selector.
	assert.Equal(t, 1, s.Query("#title", Element(body)).Len())
	assert.Equal(t, 0, s.Query("#title", Query("#a")).Len())

	frag := doc.CreateDocumentFragment()
	el := doc.CreateElement("span")
	el.SetId("inside")
	require.NoError(t, frag.Append(el.AsNode()))
	c := s.Query("#inside", From(frag))
	require.Equal(t, 1, c.Len())
	assert.Equal(t, el.AsNode(), c.Get(0))
}

func TestResolveMultiContext(t *testing.T) {
	s := newTestSeht(t)

	lists := s.Query("ul")
	require.Equal(t, 2, lists.Len())

	fanned := s.Query("li", lists)
	var want []string
	want = append(want, texts(s.Query("li", lists.Eq(0)))...)
	want = append(want, texts(s.Query("li", lists.Eq(1)))...)
	assert.Equal(t, want, texts(fanned))

	// Reversed context order reverses the concatenation.
	reversed := s.Query("li", Nodes{lists.Get(1), lists.Get(0)})
	assert.Equal(t, []string{"4", "5", "1", "2", "3"}, texts(reversed))

	// A string context is resolved against the document.
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, texts(s.Query("li", Query("ul"))))

	// Overlapping contexts still produce each node once.
	body := s.Document().Body().AsNode()
	assert.Equal(t, 5, s.Query("li", Nodes{body, lists.Get(0)}).Len())

	// An empty multi-root context searches nothing.
	assert.Equal(t, 0, s.Query("li", Nodes{}).Len())
}

func TestResolveContextFallbacks(t *testing.T) {
	s := newTestSeht(t)

	assert.Equal(t, 5, s.Query("li", nil).Len())
	assert.Equal(t, 5, s.Query("li", Query("")).Len())
	assert.Equal(t, 5, s.Query("li", From(3.14)).Len())
	assert.Equal(t, 5, s.Query("li", Window(s.Document().DefaultView())).Len())
	assert.Equal(t, 1, s.Query("#title", Window(s.Document().DefaultView())).Len())
}

func TestResolveNodeList(t *testing.T) {
	s := newTestSeht(t)
	ul := s.Document().GetElementById("a")
	c := s.Find(List(ul.AsNode().ChildNodes()))
	assert.Equal(t, []string{"1", "2", "3"}, texts(c))
}

func TestFindCollectionIdentity(t *testing.T) {
	s := newTestSeht(t)
	c := s.Query("li")
	assert.Same(t, c, s.Find(c))
	assert.NotSame(t, c, s.Find(c, Query("#a")))
}

func TestFrom(t *testing.T) {
	s := newTestSeht(t)
	doc := s.Document()
	h1 := doc.GetElementById("title")

	assert.Equal(t, Query("li"), From("li"))
	assert.Nil(t, From(nil))
	assert.Equal(t, 1, s.Find(From(h1)).Len())
	assert.Equal(t, 1, s.Find(From([]*dom.Element{h1, nil})).Len())
	assert.Equal(t, 2, s.Find(From([]any{h1, doc.Body(), "ignored", h1})).Len())
	assert.Equal(t, 5, s.Find(From(doc.QuerySelectorAll("li"))).Len())
	assert.Equal(t, 0, s.Find(From(struct{}{})).Len())
}

func TestResolveLogsAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := newTestSeht(t, WithLogger(zap.New(core)))

	s.Query("li[")
	s.Find(From(1))

	assert.Equal(t, 1, logs.FilterMessage("invalid selector").Len())
	assert.Equal(t, 1, logs.FilterMessage("unsupported selector").Len())
	for _, e := range logs.All() {
		assert.Equal(t, "seht", e.LoggerName)
	}
}
