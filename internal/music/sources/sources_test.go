package sources

import (
	"context"
	"reflect"
	"testing"
)

func TestMoveToFront(t *testing.T) {
	tests := []struct {
		name string
		list []string
		item string
		want []string
	}{
		{"already first", []string{"a", "b"}, "a", []string{"a", "b"}},
		{"moved", []string{"a", "b", "c"}, "c", []string{"c", "a", "b"}},
		{"empty item", []string{"a"}, "", []string{"a"}},
		{"missing item is prepended", []string{"a"}, "z", []string{"z", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MoveToFront(tt.list, tt.item); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

type stubSource struct{ parsers []string }

func (s stubSource) Match(context.Context, string) bool { return true }
func (s stubSource) Resolve(context.Context, string, string) ([]TrackInfo, error) {
	return nil, nil
}
func (s stubSource) SourceName() string         { return "stub" }
func (s stubSource) AvailableParsers() []string { return s.parsers }

func TestPickParser(t *testing.T) {
	src := stubSource{parsers: []string{"one", "two"}}

	got, err := PickParser(src, "")
	if err != nil || !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Errorf("default order: got %v, %v", got, err)
	}
	got, err = PickParser(src, "two")
	if err != nil || !reflect.DeepEqual(got, []string{"two", "one"}) {
		t.Errorf("selected order: got %v, %v", got, err)
	}
	if _, err := PickParser(src, "three"); err == nil {
		t.Error("expected error for unsupported parser")
	}
	if _, err := PickParser(stubSource{}, ""); err == nil {
		t.Error("expected error for source without parsers")
	}
}
