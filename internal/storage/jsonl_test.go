package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"swaplens/internal/model"
)

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "swaps.jsonl")
	sink := NewJsonlStorage(path)

	first := model.SwapRecord{
		ChainID:     1,
		TxHash:      "0xaaa",
		BlockNumber: 100,
		ResolvedSwap: model.ResolvedSwap{
			TokenIn:     "0x01",
			TokenOut:    "0x02",
			AmountIn:    "2.32",
			AmountOut:   "1.892132",
			AmountInRaw: "2320000",
		},
	}
	second := first
	second.TxHash = "0xbbb"
	second.BlockNumber = 101

	if err := sink.PutSwapBatch([]model.SwapRecord{first}); err != nil {
		t.Fatalf("put first: %v", err)
	}
	if err := sink.PutSwapBatch([]model.SwapRecord{second}); err != nil {
		t.Fatalf("put second: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var records []model.SwapRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record model.SwapRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].TxHash != "0xaaa" || records[1].TxHash != "0xbbb" {
		t.Fatalf("order mismatch: %+v", records)
	}
	if records[0].AmountIn != "2.32" {
		t.Fatalf("amount mismatch: %s", records[0].AmountIn)
	}
}

func TestJsonlStorageEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swaps.jsonl")
	sink := NewJsonlStorage(path)

	if err := sink.PutSwapBatch(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty batch must not create the file")
	}
}

func TestJsonlFailureStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.jsonl")
	sink := NewJsonlFailureStorage(path)

	if err := sink.PutFailure(model.DecodeFailure{TxHash: "0xccc", Error: "no swap events found"}); err != nil {
		t.Fatalf("put failure: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	var failure model.DecodeFailure
	if err := json.Unmarshal(data[:len(data)-1], &failure); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if failure.TxHash != "0xccc" {
		t.Fatalf("tx hash mismatch: %s", failure.TxHash)
	}
}
