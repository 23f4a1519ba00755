// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slice holds generic helpers the standard [slices] package lacks.
package slice

import "cmp"

// Filter returns the elements where keep is true.
// A non-nil input always yields a non-nil result so it encodes as [].
func Filter[T any](input []T, keep func(T) bool) []T {
	if input == nil {
		return nil
	}

	result := make([]T, 0, len(input))
	for _, v := range input {
		if keep(v) {
			result = append(result, v)
		}
	}
	return result
}

// CountFunc returns how many elements satisfy match.
func CountFunc[T any](input []T, match func(T) bool) int {
	n := 0
	for _, v := range input {
		if match(v) {
			n++
		}
	}
	return n
}

// SumFunc adds up value(v) for every element.
func SumFunc[T any, N cmp.Ordered](input []T, value func(T) N) N {
	var total N
	for _, v := range input {
		total += value(v)
	}
	return total
}

// FlatMap concatenates expand(v) for every element, in order.
func FlatMap[T, U any](input []T, expand func(T) []U) []U {
	result := make([]U, 0, len(input))
	for _, v := range input {
		result = append(result, expand(v)...)
	}
	return result
}

// Unique returns the distinct elements of input in first-seen order.
func Unique[T comparable](input []T) []T {
	seen := make(map[T]struct{}, len(input))
	result := make([]T, 0, len(input))
	for _, v := range input {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
