package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFeed(t *testing.T) {
	f := NewFeed[string]()
	if _, ok := f.Last(); ok {
		t.Fatal("expected no response yet")
	}

	var a, b []string
	stopA := f.Subscribe(func(r Response[string]) { a = append(a, r.Query) })
	stopB := f.Subscribe(func(r Response[string]) { b = append(b, r.Query) })
	defer stopB()

	f.Publish(Response[string]{Query: "al"})
	stopA()
	stopA()
	f.Publish(Response[string]{Query: "ali", Results: []string{"alice"}})

	if diff := cmp.Diff([]string{"al"}, a); diff != "" {
		t.Errorf("unexpected deliveries after unsubscribe (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"al", "ali"}, b); diff != "" {
		t.Errorf("unexpected deliveries (-want +got):\n%s", diff)
	}
	last, ok := f.Last()
	if !ok || last.Query != "ali" || len(last.Results) != 1 {
		t.Errorf("unexpected last response %+v", last)
	}
}
