package domain

import (
	"strings"
	"testing"

	m "github.com/mouse-blink/scenario/internal/model"
)

func locateAll(t *testing.T, src string) []*callSite {
	t.Helper()

	sites, err := locate(src)
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}

	return sites
}

func locate(src string) ([]*callSite, error) {
	tree, err := parseTree(m.LangJavaScript, []byte(src))
	if err != nil {
		return nil, err
	}

	// The returned sites hold nodes into this tree; the tree's finalizer
	// frees it once the nodes are no longer reachable.
	return NewLocator().Locate("test.scenario.js", tree.RootNode(), []byte(src))
}

func TestLocator_RecognizesNestedSites(t *testing.T) {
	src := `given("a counter", () => {
  $subject = make();

  it("starts", () => {
    expect($subject).toBeTruthy();
  });

  when("poked", () => {
    $subject.poke();

    it("reacts", () => {
      expect($subject.poked).toBe(true);
    });
  });
});
`

	sites := locateAll(t, src)
	if len(sites) != 4 {
		t.Fatalf("expected 4 sites, got %d", len(sites))
	}

	wantKinds := []m.CallKind{m.KindGiven, m.KindIt, m.KindWhen, m.KindIt}
	wantDepths := []int{0, 1, 1, 2}

	for i, site := range sites {
		if site.Info.Kind != wantKinds[i] {
			t.Errorf("site %d kind = %s, want %s", i, site.Info.Kind, wantKinds[i])
		}

		if site.Info.Depth != wantDepths[i] {
			t.Errorf("site %d depth = %d, want %d", i, site.Info.Depth, wantDepths[i])
		}
	}

	if sites[0].Info.Pos.Line != 1 || sites[0].Info.Pos.Column != 1 {
		t.Errorf("given position = %+v, want 1:1", sites[0].Info.Pos)
	}
}

func TestLocator_SkipOnlyModes(t *testing.T) {
	src := `given.skip("a", () => {
  it.only("b", () => {});
  when("c", () => {
    it("d", () => {});
  });
});
`

	sites := locateAll(t, src)
	if len(sites) != 4 {
		t.Fatalf("expected 4 sites, got %d", len(sites))
	}

	if sites[0].Info.Mode != m.ModeSkip {
		t.Errorf("given mode = %s, want skip", sites[0].Info.Mode)
	}

	if sites[1].Info.Mode != m.ModeOnly {
		t.Errorf("it mode = %s, want only", sites[1].Info.Mode)
	}

	if sites[2].Info.Mode != m.ModeNormal {
		t.Errorf("when mode = %s, want normal", sites[2].Info.Mode)
	}
}

func TestLocator_IgnoresUnrecognizedCallees(t *testing.T) {
	t.Run("aliased callee", func(t *testing.T) {
		src := `const g = given;
g("aliased", () => {
  $subject = 1;
});
`
		if sites := locateAll(t, src); len(sites) != 0 {
			t.Fatalf("expected no sites for aliased callee, got %d", len(sites))
		}
	})

	t.Run("foreign member object", func(t *testing.T) {
		src := `suite.it("not ours", () => {});
`
		if sites := locateAll(t, src); len(sites) != 0 {
			t.Fatalf("expected no sites, got %d", len(sites))
		}
	})

	t.Run("unknown property", func(t *testing.T) {
		src := `given("g", () => {
  it.each("x", () => {});
});
`
		sites := locateAll(t, src)
		if len(sites) != 1 {
			t.Fatalf("expected only the given site, got %d", len(sites))
		}
	})
}

func TestLocator_TopLevelWhenAndItAreUntouched(t *testing.T) {
	// Outside a given scope, when/it remain ordinary host primitives; even a
	// shape that would be invalid for the DSL is none of our business.
	src := `it("plain host test", storedCallback);
when("free-standing", () => {});
`

	if sites := locateAll(t, src); len(sites) != 0 {
		t.Fatalf("expected no sites, got %d", len(sites))
	}
}

func TestLocator_RegistrationInsideItIsFatal(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "it inside it",
			src: `given("g", () => {
  it("outer", () => {
    it("inner", () => {});
  });
});
`,
			want: "it() cannot be nested inside an it() case",
		},
		{
			name: "given inside it",
			src: `given("g", () => {
  it("outer", () => {
    given("inner", () => {});
  });
});
`,
			want: "given() cannot be nested inside an it() case",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := locate(tc.src)
			if err == nil {
				t.Fatal("expected a diagnostic")
			}

			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %q, want substring %q", err, tc.want)
			}
		})
	}
}

func TestLocator_InvalidCallbackShapeIsFatal(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"missing callback", `given("g");` + "\n"},
		{"stored callback reference", `given("g", saved);` + "\n"},
		{"spread arguments", `given("g", ...args);` + "\n"},
		{
			"stored callback in scope",
			`given("g", () => {
  it("i", saved);
});
`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := locate(tc.src)
			if err == nil {
				t.Fatal("expected a diagnostic")
			}

			if !strings.Contains(err.Error(), "requires a description and an inline function callback") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLocator_DetectsAsyncCallbacks(t *testing.T) {
	src := `given("g", () => {
  when("w", async () => {
    await $subject.run();
  });
});
`

	sites := locateAll(t, src)
	if len(sites) != 2 {
		t.Fatalf("expected 2 sites, got %d", len(sites))
	}

	if sites[0].Async {
		t.Error("given callback should not be async")
	}

	if !sites[1].Async {
		t.Error("when callback should be async")
	}
}
