package process_tree

import (
	"testing"

	"proctree/process"

	"github.com/stretchr/testify/assert"
)

func sampleForest() []*process.ProcessNode {
	return BuildForest([]*process.ProcessNode{
		node(1, 0, "init"),
		node(2, 1, "sshd"),
		node(3, 2, "bash"),
		node(4, 1, "cron"),
		node(9, 0, "orphan"),
	})
}

func TestWalk_PreOrderWithDepth(t *testing.T) {
	var visited []process.ProcessID
	var depths []int

	Walk(sampleForest(), func(n *process.ProcessNode, depth int) bool {
		visited = append(visited, n.PID)
		depths = append(depths, depth)
		return true
	})

	assert.Equal(t, []process.ProcessID{1, 2, 3, 4, 9}, visited)
	assert.Equal(t, []int{0, 1, 2, 1, 0}, depths)
}

func TestWalk_SkipChildren(t *testing.T) {
	var visited []process.ProcessID
	Walk(sampleForest(), func(n *process.ProcessNode, _ int) bool {
		visited = append(visited, n.PID)
		return n.PID != 2
	})
	assert.Equal(t, []process.ProcessID{1, 2, 4, 9}, visited)
}

func TestFindCountFlatten(t *testing.T) {
	roots := sampleForest()

	assert.Equal(t, 5, Count(roots))
	assert.Equal(t, "bash", Find(roots, 3).Name())
	assert.Nil(t, Find(roots, 404))
	assert.Equal(t, []process.ProcessID{1, 2, 3, 4, 9}, pidsOf(Flatten(roots)))
}

func TestNodeString(t *testing.T) {
	roots := sampleForest()
	assert.Equal(t, "init #1 (2) sshd #2 (1) bash #3 (0) cron #4 (0)", roots[0].String())
	assert.Equal(t, " #7 (0)", node(7, 0, "").String())
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Validate(sampleForest()))
	})

	t.Run("duplicate node", func(t *testing.T) {
		shared := node(3, 1, "shared")
		a := node(1, 0, "a")
		a.Children = []*process.ProcessNode{shared}
		b := node(2, 0, "b")
		b.Children = []*process.ProcessNode{shared}
		assert.ErrorIs(t, Validate([]*process.ProcessNode{a, b}), ErrDuplicateNode)
	})

	t.Run("cycle", func(t *testing.T) {
		a := node(1, 2, "a")
		b := node(2, 1, "b")
		a.Children = []*process.ProcessNode{b}
		b.Children = []*process.ProcessNode{a}
		assert.ErrorIs(t, Validate([]*process.ProcessNode{a}), ErrDuplicateNode)
	})

	t.Run("mixed classification", func(t *testing.T) {
		p := node(1, 0, "p")
		p.Children = []*process.ProcessNode{serviceNode(2, 1, "s")}
		assert.ErrorIs(t, Validate([]*process.ProcessNode{p}), ErrMixedClassification)
	})

	t.Run("parent mismatch", func(t *testing.T) {
		p := node(1, 0, "p")
		p.Children = []*process.ProcessNode{node(2, 5, "c")}
		assert.ErrorIs(t, Validate([]*process.ProcessNode{p}), ErrParentMismatch)
	})

	t.Run("duplicate pid", func(t *testing.T) {
		assert.ErrorIs(t, Validate([]*process.ProcessNode{node(1, 0, "a"), node(1, 0, "b")}), ErrDuplicatePID)
	})
}
