// Package mosaic is a compile-once, patch-many UI templating engine.
//
// A component type declares its markup as literal segments with dynamic
// holes between them. The first paint compiles the segments into static
// HTML plus an ordered list of slot descriptors and caches the result per
// type; every later repaint pairs that slot list with freshly computed
// values, change-detects each pair, and patches only the DOM nodes whose
// values moved. The DOM is an in-memory golang.org/x/net/html tree.
//
// Define a type, mount an instance, and write data to repaint:
//
//	counter := mosaic.MustDefine(mosaic.Options{
//		Name: "my-counter",
//		Data: map[string]interface{}{"count": 0},
//		View: func(c *mosaic.Component) mosaic.View {
//			count, _ := c.Get("count")
//			return mosaic.NewView([]string{"<button>", "</button>"}, count)
//		},
//	})
//
//	c := counter.New()
//	if err := c.Mount(ctx); err != nil { ... }
//	_ = c.Set(ctx, "count", 1) // patches the button's text node only
//
// Keyed lists (BuildList) get membership-level reconciliation; nested
// views, child components, and templ components splice in as slot values.
package mosaic
