package table

import (
	"reflect"
	"testing"
)

func TestSortedDeduplicatesAndOrders(t *testing.T) {
	s := &SetTable{Name: "TECHNOLOGY", DType: "str", Values: []string{"T3", "T1", "T3", "T2"}}
	got := s.Sorted()
	want := []string{"T1", "T2", "T3"}
	if !reflect.DeepEqual(got.Values, want) {
		t.Fatalf("expected %v, got %v", want, got.Values)
	}
	if !reflect.DeepEqual(s.Values, []string{"T3", "T1", "T3", "T2"}) {
		t.Fatalf("Sorted must not modify the receiver, got %v", s.Values)
	}
}

func TestSortedIntDTypeComparesNumerically(t *testing.T) {
	s := &SetTable{Name: "MODE_OF_OPERATION", DType: "int", Values: []string{"10", "2", "1", "2"}}
	got := s.Sorted().Values
	want := []string{"1", "2", "10"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected numeric order %v, got %v", want, got)
	}
}

func TestParseLabelCastsDigitHeadersToYears(t *testing.T) {
	l := ParseLabel("2015")
	if !l.IsYear() || l.Year != 2015 {
		t.Fatalf("expected year label 2015, got %+v", l)
	}
	if l.String() != "2015" {
		t.Fatalf("expected rendered header 2015, got %s", l.String())
	}

	n := ParseLabel("REGION")
	if n.IsYear() {
		t.Fatalf("REGION should not be a year label")
	}
	if n.String() != "REGION" {
		t.Fatalf("expected REGION, got %s", n.String())
	}
}

func TestSelectReducesColumnsInOrder(t *testing.T) {
	p := &ParameterTable{
		Name:   "InputActivityRatio",
		Labels: []Label{{Name: "REGION"}, {Name: "TECHNOLOGY"}, {Name: "FUEL"}, {Year: 2015}, {Year: 2016}},
		Rows: [][]string{
			{"RE1", "T1", "F1", "1.0", "1.1"},
			{"RE1", "T2", "F2", "2.0", "2.1"},
		},
	}
	got := p.Select([]string{"TECHNOLOGY", "2016"})
	if !reflect.DeepEqual(got.Headers(), []string{"TECHNOLOGY", "2016"}) {
		t.Fatalf("unexpected headers %v", got.Headers())
	}
	want := [][]string{{"T1", "1.1"}, {"T2", "2.1"}}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("expected %v, got %v", want, got.Rows)
	}
	if !got.Labels[1].IsYear() {
		t.Fatalf("selected year column should keep its year label")
	}
}

func TestColumnHandlesShortRows(t *testing.T) {
	p := &ParameterTable{
		Labels: []Label{{Name: "REGION"}, {Name: "VALUE"}},
		Rows:   [][]string{{"RE1", "31.536"}, {"RE1"}},
	}
	got := p.Column("VALUE")
	if !reflect.DeepEqual(got, []string{"31.536", ""}) {
		t.Fatalf("expected padded column, got %v", got)
	}
	if p.Column("MISSING") != nil {
		t.Fatalf("unknown column should return nil")
	}
}

func TestModelTaggedAccess(t *testing.T) {
	m := Model{
		"TECHNOLOGY": &SetTable{Name: "TECHNOLOGY"},
		"CapacityToActivityUnit": &ParameterTable{Name: "CapacityToActivityUnit"},
	}
	if _, ok := m.Set("TECHNOLOGY"); !ok {
		t.Fatalf("expected TECHNOLOGY to be a set entry")
	}
	if _, ok := m.Param("TECHNOLOGY"); ok {
		t.Fatalf("TECHNOLOGY should not be a parameter entry")
	}
	if _, ok := m.Param("CapacityToActivityUnit"); !ok {
		t.Fatalf("expected CapacityToActivityUnit to be a parameter entry")
	}
}
