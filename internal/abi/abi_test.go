package abi

import (
	"strings"
	"testing"
)

func TestSelector(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"balanceOf", "0x70a08231"},
		{"balanceOf(address)", "0x70a08231"},
		{"transfer", "0xa9059cbb"},
		{"decimals", "0x313ce567"},
		{"totalSupply()", "0x18160ddd"},
		{"ownerOf(uint256)", "0x6352211e"},
		{"tokenURI", "0xc87b56dd"},
	}
	for _, tc := range cases {
		got, err := Selector(tc.in)
		if err != nil {
			t.Fatalf("Selector(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("Selector(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if _, err := Selector("mint(address,uint256)"); err == nil {
		t.Error("Selector(mint): expected error for unknown function")
	}
}

func TestEncodeCallNoArgs(t *testing.T) {
	got, err := EncodeCall("symbol")
	if err != nil {
		t.Fatalf("EncodeCall(symbol): %v", err)
	}
	if got != "0x95d89b41" {
		t.Errorf("EncodeCall(symbol) = %s", got)
	}
}

func TestEncodeCallBalanceOf(t *testing.T) {
	got, err := EncodeCall("balanceOf", "0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb")
	if err != nil {
		t.Fatalf("EncodeCall: %v", err)
	}
	want := "0x70a08231" + strings.Repeat("0", 24) + "d1220a0cf47c7b9be7a2e6ba89f429762e7b9adb"
	if got != want {
		t.Errorf("EncodeCall(balanceOf) = %s, want %s", got, want)
	}
}

func TestEncodeCallTransfer(t *testing.T) {
	got, err := EncodeCall("transfer", "0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb", "1000000000000000000")
	if err != nil {
		t.Fatalf("EncodeCall: %v", err)
	}
	if len(got) != 2+8+64+64 {
		t.Fatalf("call data length = %d, want %d", len(got), 2+8+64+64)
	}
	if !strings.HasPrefix(got, "0xa9059cbb") {
		t.Errorf("selector prefix wrong: %s", got[:10])
	}
	// 1e18 = 0xde0b6b3a7640000
	if !strings.HasSuffix(got, strings.Repeat("0", 49)+"de0b6b3a7640000") {
		t.Errorf("amount word wrong: %s", got[len(got)-64:])
	}
}

func TestEncodeCallHexAmount(t *testing.T) {
	dec, err := EncodeCall("ownerOf", "255")
	if err != nil {
		t.Fatalf("EncodeCall decimal: %v", err)
	}
	hex, err := EncodeCall("ownerOf", "0xff")
	if err != nil {
		t.Fatalf("EncodeCall hex: %v", err)
	}
	if dec != hex {
		t.Errorf("decimal and hex forms differ: %s vs %s", dec, hex)
	}

	upper, err := EncodeCall("ownerOf", "0XFF")
	if err != nil {
		t.Fatalf("EncodeCall 0X hex: %v", err)
	}
	if upper != dec {
		t.Errorf("0X form differs: %s vs %s", upper, dec)
	}
}

func TestEncodeCallErrors(t *testing.T) {
	if _, err := EncodeCall("balanceOf"); err == nil {
		t.Error("missing argument: expected error")
	}
	if _, err := EncodeCall("balanceOf", "0x1234"); err == nil {
		t.Error("short address: expected error")
	}
	if _, err := EncodeCall("transfer", "0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb", "-5"); err == nil {
		t.Error("negative amount: expected error")
	}
	if _, err := EncodeCall("transfer", "0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb", "0x-5"); err == nil {
		t.Error("negative hex amount: expected error")
	}
	if _, err := EncodeCall("transfer", "0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb", "nope"); err == nil {
		t.Error("garbage amount: expected error")
	}
}

func TestDecodeUint256(t *testing.T) {
	n, err := DecodeUint256("0x0000000000000000000000000000000000000000000000000de0b6b3a7640000")
	if err != nil {
		t.Fatalf("DecodeUint256: %v", err)
	}
	if n.String() != "1000000000000000000" {
		t.Errorf("DecodeUint256 = %s", n)
	}

	if _, err := DecodeUint256("0x1234"); err == nil {
		t.Error("short data: expected error")
	}
	if _, err := DecodeUint256("0x"); err == nil {
		t.Error("empty data: expected error")
	}
}

func TestDecodeUint8(t *testing.T) {
	d, err := DecodeUint8("0x0000000000000000000000000000000000000000000000000000000000000012")
	if err != nil {
		t.Fatalf("DecodeUint8: %v", err)
	}
	if d != 18 {
		t.Errorf("DecodeUint8 = %d, want 18", d)
	}

	if _, err := DecodeUint8("0x0000000000000000000000000000000000000000000000000000000000000100"); err == nil {
		t.Error("256: expected out of range error")
	}
}

func TestDecodeBool(t *testing.T) {
	v, err := DecodeBool("0x0000000000000000000000000000000000000000000000000000000000000001")
	if err != nil || !v {
		t.Errorf("DecodeBool(1) = %v, %v", v, err)
	}
	v, err = DecodeBool("0x0000000000000000000000000000000000000000000000000000000000000000")
	if err != nil || v {
		t.Errorf("DecodeBool(0) = %v, %v", v, err)
	}
}

func TestDecodeAddress(t *testing.T) {
	got, err := DecodeAddress("0x000000000000000000000000d1220a0cf47c7b9be7a2e6ba89f429762e7b9adb")
	if err != nil {
		t.Fatalf("DecodeAddress: %v", err)
	}
	if got != "0xd1220a0cf47c7b9be7a2e6ba89f429762e7b9adb" {
		t.Errorf("DecodeAddress = %s", got)
	}
}

func TestDecodeStringDynamic(t *testing.T) {
	// offset 0x20, length 3, "CHZ"
	data := "0x" +
		"0000000000000000000000000000000000000000000000000000000000000020" +
		"0000000000000000000000000000000000000000000000000000000000000003" +
		"43485a0000000000000000000000000000000000000000000000000000000000"
	got, err := DecodeString(data)
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	if got != "CHZ" {
		t.Errorf("DecodeString = %q, want CHZ", got)
	}
}

func TestDecodeStringBytes32(t *testing.T) {
	data := "0x43485a0000000000000000000000000000000000000000000000000000000000"
	got, err := DecodeString(data)
	if err != nil {
		t.Fatalf("DecodeString bytes32: %v", err)
	}
	if got != "CHZ" {
		t.Errorf("DecodeString = %q, want CHZ", got)
	}
}

func TestDecodeStringGarbage(t *testing.T) {
	if _, err := DecodeString("0xdead"); err == nil {
		t.Error("garbage: expected error")
	}
}
