package tasks

import (
	"reflect"
	"testing"
	"time"

	"github.com/brainpace/brainpace/internal/models"
	"github.com/brainpace/brainpace/internal/testutil"
)

func TestFilterKeepsOpenTasksUnderThreshold(t *testing.T) {
	input := []models.Task{
		testutil.NewTask().WithID(1).WithComplexity(1).Build(),
		testutil.NewTask().WithID(2).WithComplexity(4).Build(),
		testutil.NewTask().WithID(3).WithComplexity(2).Completed().Build(),
		testutil.NewTask().WithID(4).WithComplexity(3).Build(),
		testutil.NewTask().WithID(5).WithComplexity(2).Build(),
	}

	got := Filter(input, 3)
	ids := make([]uint64, 0, len(got))
	for _, task := range got {
		ids = append(ids, task.ID)
	}
	if !reflect.DeepEqual(ids, []uint64{1, 4, 5}) {
		t.Fatalf("expected ids [1 4 5], got %v", ids)
	}
	if len(input) != 5 || input[1].ID != 2 {
		t.Fatalf("expected input to be untouched")
	}
}

func TestFilterIdempotent(t *testing.T) {
	input := make([]models.Task, 0, 50)
	for i := 0; i < 50; i++ {
		b := testutil.NewTask().WithID(uint64(i + 1)).WithComplexity(i%5 + 1)
		if i%7 == 0 {
			b = b.Completed()
		}
		input = append(input, b.Build())
	}
	for max := 1; max <= 5; max++ {
		once := Filter(input, max)
		twice := Filter(once, max)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("max=%d: filtering twice changed the result", max)
		}
	}
}

func TestFilterEmpty(t *testing.T) {
	if got := Filter(nil, 3); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}

func TestFilterThousandTasks(t *testing.T) {
	input := make([]models.Task, 0, 1000)
	for i := 0; i < 1000; i++ {
		input = append(input, testutil.NewTask().WithID(uint64(i+1)).WithComplexity(i%5+1).Build())
	}

	start := time.Now()
	got := Filter(input, 3)
	elapsed := time.Since(start)

	if elapsed > 100*time.Millisecond {
		t.Fatalf("expected filter under 100ms, took %s", elapsed)
	}
	if len(got) != 600 {
		t.Fatalf("expected 600 tasks, got %d", len(got))
	}
	var lastID uint64
	for _, task := range got {
		if task.ComplexityLevel > 3 || task.IsCompleted {
			t.Fatalf("unexpected task in result: %+v", task)
		}
		if task.ID <= lastID {
			t.Fatalf("expected original order, id %d after %d", task.ID, lastID)
		}
		lastID = task.ID
	}
}
