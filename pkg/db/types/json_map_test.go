package dbtypes

import "testing"

func TestJSONMapScanValue(t *testing.T) {
	in := JSONMap{"chatId": "c1", "amount": float64(150000)}
	raw, err := in.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var out JSONMap
	if err := out.Scan(raw); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if out["chatId"] != "c1" || out["amount"] != float64(150000) {
		t.Fatalf("unexpected round trip %+v", out)
	}

	var empty JSONMap
	if err := empty.Scan(nil); err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty map from nil, got %+v %v", empty, err)
	}
	if err := empty.Scan(42); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}
