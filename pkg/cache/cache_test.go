package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New(0)
	defer c.Close()

	c.Set("a", 1, 0)
	v, ok := c.Get("a")
	if !ok || v.(int) != 1 {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}

	c.Set("a", 2, 0)
	v, _ = c.Get("a")
	if v.(int) != 2 {
		t.Fatalf("overwrite did not stick, got %v", v)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatal("Get on a missing key reported a hit")
	}
}

func TestExpiry(t *testing.T) {
	c := New(0)
	defer c.Close()

	c.Set("short", "v", 10*time.Millisecond)
	if _, ok := c.Get("short"); !ok {
		t.Fatal("entry expired immediately")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Fatal("entry survived past its ttl")
	}

	c.Set("forever", "v", 0)
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("forever"); !ok {
		t.Fatal("zero ttl entry expired")
	}
}

func TestDelete(t *testing.T) {
	c := New(0)
	defer c.Close()

	c.Set("a", 1, 0)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted key still present")
	}
	c.Delete("a") // missing key is a no-op
}

func TestLRUEviction(t *testing.T) {
	c := New(2)
	defer c.Close()

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)

	// touch a so b becomes least recently used
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing before eviction")
	}
	c.Set("c", 3, 0)

	if _, ok := c.Get("b"); ok {
		t.Fatal("least recently used entry survived eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("recently touched entry was evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("newest entry was evicted")
	}
}

func TestNilCacheIsInert(t *testing.T) {
	var c *Cache
	c.Set("a", 1, 0)
	if _, ok := c.Get("a"); ok {
		t.Fatal("nil cache returned a hit")
	}
	c.Delete("a")
}

func TestKeyStability(t *testing.T) {
	if Key("chats", "list") != Key("chats", "list") {
		t.Fatal("same parts hashed differently")
	}
	if Key("chats", "list") == Key("chats", "li", "st") {
		t.Fatal("part boundaries do not affect the key")
	}
	if Key("a") == Key("b") {
		t.Fatal("distinct parts collided")
	}
}
