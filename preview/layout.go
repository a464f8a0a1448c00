package preview

import (
	"fmt"
	"html"
)

// devPage wraps the component's HTML. The inline script applies "render"
// pushes to the mount point and reacts to "reload" by refreshing the
// page; it reconnects with a small backoff when the server restarts.
const devPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; margin: 0; }
#mosaic-banner { background: #1f2430; color: #d8dee9; font-size: 12px; padding: 4px 12px; }
#mosaic-banner .dot { color: #a3be8c; }
#mosaic-banner .dot.off { color: #bf616a; }
#mosaic-root { padding: 16px; }
</style>
</head>
<body>
<div id="mosaic-banner"><span class="dot off" id="mosaic-dot">&#9679;</span> mosaic preview</div>
<div id="mosaic-root">%s</div>
<script>
(function () {
  var dot = document.getElementById("mosaic-dot");
  var root = document.getElementById("mosaic-root");
  var delay = 500;

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");

    ws.onopen = function () {
      dot.classList.remove("off");
      delay = 500;
    };
    ws.onmessage = function (ev) {
      var msg = JSON.parse(ev.data);
      if (msg.type === "render") {
        root.innerHTML = msg.content;
      } else if (msg.type === "reload") {
        location.reload();
      }
    };
    ws.onclose = function () {
      dot.classList.add("off");
      setTimeout(connect, delay);
      delay = Math.min(delay * 2, 8000);
    };
  }

  connect();
})();
</script>
</body>
</html>
`

// renderPage injects the component HTML into the dev layout. The title is
// escaped; the body is the engine's own serialized output and goes in
// untouched.
func renderPage(title, body string) string {
	return fmt.Sprintf(devPage, html.EscapeString(title), body)
}
