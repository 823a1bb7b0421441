package session

import (
	"reflect"
	"testing"
)

func TestParseArrayLiteralFlat(t *testing.T) {
	got, err := ParseArrayLiteral(`{1,2,3}`)
	if err != nil {
		t.Fatal(err)
	}
	want := []Value{"1", "2", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v want %#v", got, want)
	}
}

func TestParseArrayLiteralQuotedAndNull(t *testing.T) {
	got, err := ParseArrayLiteral(`{"a","b,c",NULL,"with \"quote\""}`)
	if err != nil {
		t.Fatal(err)
	}
	want := []Value{"a", "b,c", nil, `with "quote"`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v want %#v", got, want)
	}
}

func TestParseArrayLiteralNested(t *testing.T) {
	got, err := ParseArrayLiteral(`{{1,2},{3,4}}`)
	if err != nil {
		t.Fatal(err)
	}
	want := []Value{
		[]Value{"1", "2"},
		[]Value{"3", "4"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v want %#v", got, want)
	}
}

func TestParseInt2Vector(t *testing.T) {
	got, err := ParseInt2Vector("1 2 3")
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestParseInt2VectorEmpty(t *testing.T) {
	got, err := ParseInt2Vector("")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("got %v want nil", got)
	}
}
