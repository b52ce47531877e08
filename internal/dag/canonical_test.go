package dag

import "testing"

func TestCanonicalJSON_SortsNestedKeys(t *testing.T) {
	v := map[string]any{
		"zeta":  1,
		"alpha": []any{map[string]any{"b": true, "a": "x"}},
		"mid":   map[string]any{"y": nil, "x": 2.5},
	}
	got, err := CanonicalJSON(v)
	if err != nil {
		t.Fatalf("CanonicalJSON: %v", err)
	}
	want := `{"alpha":[{"a":"x","b":true}],"mid":{"x":2.5,"y":null},"zeta":1}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestCanonicalJSON_StructMatchesMap(t *testing.T) {
	type pair struct {
		B string `json:"b"`
		A string `json:"a"`
	}
	fromStruct, err := CanonicalJSON(pair{B: "2", A: "1"})
	if err != nil {
		t.Fatalf("CanonicalJSON(struct): %v", err)
	}
	fromMap, err := CanonicalJSON(map[string]string{"a": "1", "b": "2"})
	if err != nil {
		t.Fatalf("CanonicalJSON(map): %v", err)
	}
	if string(fromStruct) != string(fromMap) {
		t.Errorf("struct %s != map %s", fromStruct, fromMap)
	}
}
