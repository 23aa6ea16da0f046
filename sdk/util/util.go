// Copyright 2022, Pulumi Corporation.  All rights reserved.

package util

// Map f over arr.
func MapOver[T any, U any, F func(T) U](arr []T, f F) []U {
	l := make([]U, len(arr))
	for i, t := range arr {
		l[i] = f(t)
	}
	return l
}

// Filter returns the elements of arr for which keep holds, in order.
func Filter[T any, F func(T) bool](arr []T, keep F) []T {
	var l []T
	for _, t := range arr {
		if keep(t) {
			l = append(l, t)
		}
	}
	return l
}
