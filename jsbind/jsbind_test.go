package jsbind

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chrisuehlinger/seht/dom"
	"github.com/chrisuehlinger/seht/seht"
)

const fixture = `<!DOCTYPE html><html><head><title>t</title></head><body>` +
	`<h1 id="title">Title</h1>` +
	`<ul id="a"><li>1</li><li>2</li><li>3</li></ul>` +
	`<ul id="b"><li>4</li><li>5</li></ul>` +
	`<p class="x">para</p>` +
	`</body></html>`

type env struct {
	rt   *Runtime
	s    *seht.Seht
	logs *observer.ObservedLogs
}

func newEnv(t *testing.T) *env {
	t.Helper()
	doc, err := dom.ParseHTML(fixture)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	s := seht.New(doc, seht.WithLogger(logger))
	rt := NewRuntime(WithLogger(logger))
	require.NoError(t, Install(rt, s))
	return &env{rt: rt, s: s, logs: logs}
}

func (e *env) eval(t *testing.T, code string) any {
	t.Helper()
	v, err := e.rt.Execute(code)
	require.NoError(t, err, code)
	return v.Export()
}

func TestInstall(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, true, e.eval(t, `typeof seht === "function" && $ === seht`))
	assert.Equal(t, "#document", e.eval(t, `document.nodeName`))
	assert.Equal(t, "#window", e.eval(t, `window.nodeName`))

	assert.ErrorIs(t, Install(e.rt, e.s), ErrAlreadyInstalled)
	assert.Equal(t, true, e.eval(t, `$ === seht`))
}

func TestInstallKeepsExistingDollar(t *testing.T) {
	doc, err := dom.ParseHTML(fixture)
	require.NoError(t, err)
	rt := NewRuntime()
	_, err = rt.Execute(`var $ = "mine";`)
	require.NoError(t, err)

	require.NoError(t, Install(rt, seht.New(doc)))
	v, err := rt.Execute(`$ + ":" + typeof seht`)
	require.NoError(t, err)
	assert.Equal(t, "mine:function", v.String())
}

func TestSelection(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		code string
		want any
	}{
		{`$("li").length`, int64(5)},
		{`$("li", "#b").length`, int64(2)},
		{`$("li", $("#b")).length`, int64(2)},
		{`$("li", document.getElementById("a")).length`, int64(3)},
		{`$("li", [$("#a")[0], $("#b")[0]]).length`, int64(5)},
		{`$("li", ["#a"]).length`, int64(3)},
		{`$("li", ["#a", $("#b")[0], 7]).length`, int64(5)},
		{`$(["#b li", $("#title")[0]]).length`, int64(3)},
		{`$("#missing").length`, int64(0)},
		{`$("[").length`, int64(0)},
		{`$(null).length + $(undefined).length + $(42).length`, int64(0)},
		{`$("<i>a</i><b>b</b>").length`, int64(2)},
		{`$(document).length`, int64(1)},
		{`$(window)[0] === window`, true},
		{`typeof $(window)[0].nodeType`, "undefined"},
		{`$([document.body, document.body]).length`, int64(1)},
		{`$("#title")[0] === document.getElementById("title")`, true},
		{`$("li").get(1).textContent`, "2"},
		{`$("li").get(9)`, nil},
		{`$("li").get().length`, int64(5)},
		{`$("li").eq(-1).length`, int64(0)},
		{`$("li").first().text() + $("li").last().text()`, "15"},
		{`$("li").parent().length`, int64(2)},
		{`$("li").toArray().length`, int64(5)},
		{`$("#a li").toString()`, "<li>1</li><li>2</li><li>3</li>"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.eval(t, tt.code), tt.code)
	}
}

func TestIteration(t *testing.T) {
	e := newEnv(t)

	got := e.eval(t, `
		var out = [];
		$("#a li").each(function(el, i, all) {
			out.push(this.textContent + "/" + el.textContent + "/" + i + "/" + all.length);
		});
		out.join(",");
	`)
	assert.Equal(t, "1/1/0/3,2/2/1/3,3/3/2/3", got)

	assert.Equal(t, "24", e.eval(t, `$("li").filter(function(el, i) { return i % 2 == 1 }).toArray().map(function(el) { return el.textContent }).join("")`))
	assert.Equal(t, int64(2), e.eval(t, `$("li").map(function(el) { return el.parentNode }).length`))
	assert.Equal(t, int64(0), e.eval(t, `$("li").map(function() { return "nope" }).length`))

	_, err := e.rt.Execute(`$("li").each(function() { throw new Error("stop") })`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop")
}

func TestContent(t *testing.T) {
	e := newEnv(t)

	e.eval(t, `$("#a").append("<li>4</li>").prepend($("p.x"))`)
	assert.Equal(t, `<p class="x">para</p><li>1</li><li>2</li><li>3</li><li>4</li>`, e.eval(t, `$("#a").html()`))

	e.eval(t, `$("#title").text("<b>")`)
	assert.Equal(t, "&lt;b&gt;", e.eval(t, `$("#title").html()`))

	target := e.eval(t, `$("<li>x</li>").appendTo("ul").length`)
	assert.Equal(t, int64(2), target)
	assert.Equal(t, int64(3), e.eval(t, `$("li", "#b").length`))

	assert.Equal(t, int64(1), e.eval(t, `$("body > p.x").remove().length`))
	assert.Equal(t, int64(1), e.eval(t, `$("p.x").length`), "the copy inside #a remains")

	e.eval(t, `$("#b").empty()`)
	assert.Equal(t, "", e.eval(t, `$("#b").html()`))
}

func TestContentErrorsThrow(t *testing.T) {
	e := newEnv(t)
	_, err := e.rt.Execute(`var d = $("<div></div>"); d.remove(); d.after("<i></i>")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NoModificationAllowedError")
}

func TestClassesAndAttributes(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, true, e.eval(t, `$("li").classes.add("a", "b", 3).classes.has("b")`))
	assert.Equal(t, "a b", e.eval(t, `$("li")[0].className`))
	assert.Equal(t, false, e.eval(t, `$("li").toggleClass("a").hasClass("a")`))
	assert.Equal(t, false, e.eval(t, `$("li").removeClass("b").classes.has("b")`))

	assert.Equal(t, "title", e.eval(t, `$("h1").attributes.get("id")`))
	assert.Nil(t, e.eval(t, `$("h1").attr("nope")`))
	e.eval(t, `$("h1").attributes.set({title: "hi", tabindex: 2, hidden: true})`)
	assert.Equal(t, "hi|2|true", e.eval(t, `var h = $("h1"); [h.attr("title"), h.attr("tabindex"), h.attr("hidden")].join("|")`))
	e.eval(t, `$("h1").attr("title", null)`)
	assert.Nil(t, e.eval(t, `$("h1").attr("title")`))
}

func TestData(t *testing.T) {
	e := newEnv(t)

	e.eval(t, `$("#title").data.set({config: {a: 1, list: ["x"]}, flag: false})`)
	assert.Equal(t, `{"a":1,"list":["x"]}`, e.eval(t, `$("#title").attr("data-config")`))
	assert.Equal(t, true, e.eval(t, `$("#title").data.get("config").a === 1`))
	assert.Equal(t, "x", e.eval(t, `$("#title").data("data-config").list[0]`))
	assert.Equal(t, false, e.eval(t, `$("#title").data("flag")`))

	e.eval(t, `$("#title").data("flag", null)`)
	assert.Nil(t, e.eval(t, `$("#title").attr("data-flag")`))
	assert.Nil(t, e.eval(t, `$("#title").data("absent")`))

	e.eval(t, `$("#title").attr("data-bad", "{nope")`)
	_, err := e.rt.Execute(`$("#title").data.get("bad")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestDataKeepsPropertyOrder(t *testing.T) {
	e := newEnv(t)

	e.eval(t, `$("#title").attr("data-order", '{"z":1,"a":2,"m":3}')`)
	read := `var v = $("#title").data.get("order"); JSON.stringify(v) + "|" + Object.keys(v).join(",")`
	for range 20 {
		assert.Equal(t, `{"z":1,"a":2,"m":3}|z,a,m`, e.eval(t, read))
	}

	e.eval(t, `$("#title").data("written", {y: 1, b: {d: 2, c: [3, {f: 0, e: 1}]}})`)
	assert.Equal(t, `{"y":1,"b":{"d":2,"c":[3,{"f":0,"e":1}]}}`, e.eval(t, `$("#title").attr("data-written")`))
	assert.Equal(t, "y,b", e.eval(t, `Object.keys($("#title").data("written")).join(",")`))

	e.eval(t, `$("#title").data.set({later: {q: 1, p: 2}, undef: undefined, fn: function() {}})`)
	assert.Equal(t, `{"q":1,"p":2}`, e.eval(t, `$("#title").attr("data-later")`))
	assert.Nil(t, e.eval(t, `$("#title").attr("data-undef")`))
	assert.Nil(t, e.eval(t, `$("#title").attr("data-fn")`))
}

func TestEvents(t *testing.T) {
	e := newEnv(t)

	got := e.eval(t, `
		var seen = [];
		function onClick(ev) { seen.push(this.textContent + ":" + ev.type + ":" + ev.bubbles); }
		var li = $("#a li");
		li.on("click", onClick);
		li.eq(1).trigger("click");
		li.off("click", onClick);
		li.trigger("click");
		seen.join(",");
	`)
	assert.Equal(t, "2:click:true", got)

	got = e.eval(t, `
		var bubbled = 0;
		$("#a").on("ping", function(ev) { bubbled++ });
		$("#a li").trigger("ping");
		$("#a li").events.dispatch("ping", ["ping"]);
		bubbled;
	`)
	assert.Equal(t, int64(3), got, "plain dispatches do not bubble")
}

func TestEventsAddRemoveAndDetail(t *testing.T) {
	e := newEnv(t)

	got := e.eval(t, `
		var log = [];
		var payload = {n: 3};
		var handlers = {
			greet: function(ev) { log.push(ev.detail.n + ":" + (ev.detail === payload)) },
			once: {listener: function() { log.push("once") }, options: {once: true}}
		};
		var h = $("#title");
		h.events.add(handlers);
		h.events.dispatch({name: "greet", data: payload}, "once", "once");
		h.events.remove(handlers);
		h.events.dispatch({name: "greet", data: payload});
		log.join(",");
	`)
	assert.Equal(t, "3:true,once", got)
}

func TestDispatchIgnoresNonNames(t *testing.T) {
	e := newEnv(t)

	got := e.eval(t, `
		var fired = [];
		var h = $("#title");
		h.on("5", function() { fired.push("5") });
		h.on("true", function() { fired.push("true") });
		h.on("ok", function() { fired.push("ok") });
		h.events.dispatch(5, true, {data: 1}, "ok", [7, "ok"]);
		h.trigger(5);
		fired.join(",");
	`)
	assert.Equal(t, "ok,ok", got)
}

func TestListenerExceptionsAreIsolated(t *testing.T) {
	e := newEnv(t)

	got := e.eval(t, `
		var reached = [];
		$("#a li").first().on("boom", function() { throw new Error("first fails") });
		$("#a li").on("boom", function() { reached.push(this.textContent) });
		$("#a li").events.dispatch("boom");
		reached.join(",");
	`)
	assert.Equal(t, "1,2,3", got)

	entries := e.logs.FilterMessage("event listener threw").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].ContextMap()["type"])
}

func TestStatics(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, "a0b1", e.eval(t, `var s = ""; seht.each(["a", "b"], function(v, i) { s += v + i }); s`))
	assert.Equal(t, "x=1", e.eval(t, `var s = ""; seht.each({x: 1}, function(v, k) { s += k + "=" + v }); s`))
	assert.Equal(t, "2,4", e.eval(t, `seht.map([1, 2], function(v) { return v * 2 }).join(",")`))
	assert.Equal(t, int64(3), e.eval(t, `seht.toArray($("#a li")).length`))
	assert.Equal(t, true, e.eval(t, `Array.isArray(seht.toArray({length: 0}))`))
	assert.Equal(t, "1,2", e.eval(t, `seht.unique([1, 2, 1, 2]).join(",")`))

	li := `document.getElementById("a").querySelector("li")`
	assert.Equal(t, int64(1), e.eval(t, `seht.unique([`+li+`, `+li+`]).length`))
}

func TestReady(t *testing.T) {
	e := newEnv(t)
	require.Equal(t, dom.ReadyStateLoading, e.s.Document().ReadyState())

	e.eval(t, `var calls = 0; var cancel = seht.ready(function() { calls++ }); seht.ready(function() { calls += 10 })();`)
	assert.Equal(t, int64(0), e.eval(t, `calls`))

	e.s.Document().FinishLoading()
	assert.Equal(t, int64(1), e.eval(t, `calls`))

	e.eval(t, `seht.ready(function() { calls++ })`)
	assert.Equal(t, int64(2), e.eval(t, `calls`), "runs at once when already loaded")
}

func TestNodeWrappers(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, int64(1), e.eval(t, `document.getElementById("title").nodeType`))
	assert.Equal(t, "H1", e.eval(t, `document.querySelector("h1").tagName`))
	assert.Equal(t, int64(5), e.eval(t, `document.querySelectorAll("li").length`))
	assert.Equal(t, true, e.eval(t, `document.querySelector("li").parentNode === document.getElementById("a")`))

	e.eval(t, `var h = document.getElementById("title"); h.id = "t2"; h.className = "big";`)
	assert.Equal(t, int64(1), e.eval(t, `$("#t2.big").length`))
	assert.Equal(t, `<h1 id="t2" class="big">Title</h1>`, e.eval(t, `h.outerHTML`))

	got := e.eval(t, `
		var hits = 0;
		function f() { hits++ }
		document.addEventListener("x", f);
		$(document).trigger("x");
		document.removeEventListener("x", f);
		$(document).trigger("x");
		hits;
	`)
	assert.Equal(t, int64(1), got)

	_, err := e.rt.Execute(`document.querySelector("[")`)
	assert.Error(t, err)
}

func TestConsoleLogs(t *testing.T) {
	e := newEnv(t)
	e.eval(t, `console.log("hello", 1, null, undefined); console.warn("careful")`)

	entries := e.logs.FilterLoggerName("jsbind.console").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "hello 1 null undefined", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestExecuteScriptRecordsErrors(t *testing.T) {
	rt := NewRuntime()
	var reported []error
	rt.SetOnError(func(err error) { reported = append(reported, err) })

	assert.Error(t, rt.ExecuteScript(`throw new Error("x")`, "bad.js"))
	assert.Error(t, rt.ExecuteScript(`this is not js`, "syntax.js"))
	assert.NoError(t, rt.ExecuteScript(`var ok = 1`, "good.js"))

	assert.Len(t, rt.Errors(), 2)
	assert.Len(t, reported, 2)
	rt.ClearErrors()
	assert.Empty(t, rt.Errors())
}

func TestErrorHandlerMayUseRuntime(t *testing.T) {
	rt := NewRuntime()
	var seen []int
	rt.SetOnError(func(err error) {
		seen = append(seen, len(rt.Errors()))
		rt.ClearErrors()
		_, _ = rt.Execute(`1 + 1`)
	})

	done := make(chan error, 1)
	go func() { done <- rt.ExecuteScript(`throw new Error("x")`, "bad.js") }()
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("error handler blocked on the runtime")
	}
	assert.Equal(t, []int{1}, seen)
	assert.Empty(t, rt.Errors())
}
