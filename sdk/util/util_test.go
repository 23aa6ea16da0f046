// Copyright 2022, Pulumi Corporation.  All rights reserved.

package util

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapOver(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, MapOver([]int{1, 2}, strconv.Itoa))
	assert.Empty(t, MapOver([]int(nil), strconv.Itoa))
}

func TestFilter(t *testing.T) {
	even := func(i int) bool { return i%2 == 0 }
	assert.Equal(t, []int{2, 4}, Filter([]int{1, 2, 3, 4}, even))
	assert.Nil(t, Filter([]int{1, 3}, even))
}
