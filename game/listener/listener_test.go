package listener

import "testing"

func TestNotify(t *testing.T) {
	var r Registry
	r.Notify() // no listeners yet
	n1, n2 := 0, 0
	r.Add(func() { n1++ })
	remove2 := r.Add(func() { n2++ })
	r.Notify()
	if n1 != 1 || n2 != 1 {
		t.Errorf("wanted both listeners notified once, got %v and %v", n1, n2)
	}
	remove2()
	remove2() // idempotent
	r.Notify()
	if n1 != 2 || n2 != 1 {
		t.Errorf("wanted only the remaining listener notified, got %v and %v", n1, n2)
	}
}

func TestNotifyListenerRemovesItself(t *testing.T) {
	var r Registry
	n := 0
	var remove func()
	remove = r.Add(func() {
		n++
		remove()
	})
	r.Notify()
	r.Notify()
	if n != 1 {
		t.Errorf("wanted listener to only run once after removing itself, got %v", n)
	}
}

func TestNotifyListenerAddsListener(t *testing.T) {
	var r Registry
	n := 0
	r.Add(func() {
		if n == 0 {
			r.Add(func() { n += 10 })
		}
		n++
	})
	r.Notify()
	if n != 1 {
		t.Errorf("wanted only the first listener to run on the first notify, got %v", n)
	}
	r.Notify()
	if n != 12 {
		t.Errorf("wanted both listeners to run on the second notify, got %v", n)
	}
}
