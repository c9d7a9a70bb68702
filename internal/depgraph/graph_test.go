package depgraph

import (
	"errors"
	"testing"
)

func indexOf(t *testing.T, order []string, name string) int {
	t.Helper()
	for i, n := range order {
		if n == name {
			return i
		}
	}
	t.Fatalf("%s missing from order %v", name, order)
	return -1
}

func TestOrderChain(t *testing.T) {
	g := New()
	g.Add("comments", "posts")
	g.Add("posts", "users")
	g.Add("users")

	order, err := g.Order()
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("order = %v", order)
	}
	if indexOf(t, order, "users") > indexOf(t, order, "posts") {
		t.Errorf("users must precede posts: %v", order)
	}
	if indexOf(t, order, "posts") > indexOf(t, order, "comments") {
		t.Errorf("posts must precede comments: %v", order)
	}
}

func TestOrderDiamond(t *testing.T) {
	g := New()
	g.Add("orders", "users", "products")
	g.Add("users", "accounts")
	g.Add("products", "accounts")
	g.Add("accounts")

	order, err := g.Order()
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	for name, deps := range map[string][]string{
		"orders":   {"users", "products"},
		"users":    {"accounts"},
		"products": {"accounts"},
	} {
		for _, dep := range deps {
			if indexOf(t, order, dep) > indexOf(t, order, name) {
				t.Errorf("%s must precede %s: %v", dep, name, order)
			}
		}
	}
}

func TestOrderCycle(t *testing.T) {
	g := New()
	g.Add("a", "b")
	g.Add("b", "a")

	_, err := g.Order()
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if !errors.Is(err, ErrCycle) {
		t.Errorf("error should wrap ErrCycle: %v", err)
	}
}

func TestOrderSelfReference(t *testing.T) {
	g := New()
	g.Add("categories", "categories")

	order, err := g.Order()
	if err != nil {
		t.Fatalf("self reference should not be a cycle: %v", err)
	}
	if len(order) != 1 || order[0] != "categories" {
		t.Errorf("order = %v", order)
	}
}

func TestOrderUnknownDependency(t *testing.T) {
	g := New()
	g.Add("posts", "users")

	order, err := g.Order()
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if len(order) != 1 || order[0] != "posts" {
		t.Errorf("unknown dependencies should be skipped, got %v", order)
	}
}

func TestOrderDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		g := New()
		g.Add("c")
		g.Add("a")
		g.Add("b")

		order, err := g.Order()
		if err != nil {
			t.Fatalf("Order: %v", err)
		}
		if order[0] != "a" || order[1] != "b" || order[2] != "c" {
			t.Fatalf("independent nodes should sort: %v", order)
		}
	}
}
