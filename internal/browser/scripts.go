package browser

import (
	"encoding/json"
	"fmt"
)

// findNodes resolves a selector to an array of elements in page script.
const findNodes = `const findNodes = (sel) => {
  if (sel.startsWith('/') || sel.startsWith('(')) {
    const r = document.evaluate(sel, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
    const out = [];
    for (let i = 0; i < r.snapshotLength; i++) out.push(r.snapshotItem(i));
    return out;
  }
  return Array.from(document.querySelectorAll(sel));
};`

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func withNodes(sel, body string) string {
	return fmt.Sprintf("(() => {\n%s\nconst nodes = findNodes(%s);\n%s\n})()", findNodes, jsString(sel), body)
}

func textsScript(sel string) string {
	return withNodes(sel, `return nodes.map((n) => (n.innerText || n.textContent || '').trim());`)
}

func countScript(sel string) string {
	return withNodes(sel, `return nodes.length;`)
}

func clickScript(sel string) string {
	return withNodes(sel, `if (!nodes.length) return false;
nodes[0].click();
return true;`)
}
