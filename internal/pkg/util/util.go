package util

import "reflect"

// IsNil 檢查介面是否為 nil
// 注意：typed nil pointer 也視為 nil
func IsNil(i interface{}) bool {
	if i == nil {
		return true
	}

	switch reflect.TypeOf(i).Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Slice, reflect.Func, reflect.Interface:
		return reflect.ValueOf(i).IsNil()
	}

	return false
}
