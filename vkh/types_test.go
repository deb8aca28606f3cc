package vkh

import "testing"

func TestHandle_IsNull(t *testing.T) {
	if !Handle(0).IsNull() {
		t.Error("zero handle should be null")
	}
	if Handle(1).IsNull() {
		t.Error("non-zero handle should not be null")
	}
}

func TestResult_Ok(t *testing.T) {
	if !Success.Ok() {
		t.Error("Success should be Ok")
	}
	if ErrorDeviceLost.Ok() {
		t.Error("ErrorDeviceLost should not be Ok")
	}
	if NotReady.Ok() {
		t.Error("NotReady is not success despite being positive")
	}
}
