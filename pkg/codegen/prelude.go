package codegen

// preludeHelpers holds the JavaScript implementations inlined into native
// output. Each entry declares the helpers it calls so the generator can pull
// in the transitive closure of what a program actually uses.
type preludeHelper struct {
	deps []string
	src  string
}

var preludeHelpers = map[string]preludeHelper{
	// --- core utilities ---

	"err": {src: `function __err(code, msg, props) {
  var e = new Error(msg);
  e.code = code;
  for (var k in props) { e[k] = props[k]; }
  return e;
}`},

	"truthy": {src: `function __truthy(v) {
  if (v == null) return false;
  if (Array.isArray(v)) return v.length > 0;
  if (typeof v === "object") return Object.keys(v).length > 0;
  if (typeof v === "number") return v !== 0 && !isNaN(v);
  if (typeof v === "string") return v !== "";
  return !!v;
}`},

	"str": {src: `function __str(v) {
  if (v == null) return "";
  if (Array.isArray(v)) return v.map(__str).join(",");
  return String(v);
}`},

	"eq": {src: `function __eq(a, b) {
  if (a == null && b == null) return true;
  if (a == null || b == null) return false;
  if (typeof a === "boolean") a = a ? 1 : 0;
  if (typeof b === "boolean") b = b ? 1 : 0;
  if (typeof a === "string" && typeof b === "string") return a === b;
  if (typeof a === "string" && typeof b === "number") {
    if (a.trim() === "") return false;
    var an = Number(a);
    return !isNaN(an) && an === b;
  }
  if (typeof a === "number" && typeof b === "string") return __eq(b, a);
  if (typeof a === "number" && typeof b === "number") return a === b;
  if (Array.isArray(a) && Array.isArray(b)) {
    if (a.length !== b.length) return false;
    for (var i = 0; i < a.length; i++) { if (!__eq(a[i], b[i])) return false; }
    return true;
  }
  if (typeof a === "object" && typeof b === "object" && !Array.isArray(a) && !Array.isArray(b)) {
    var ka = Object.keys(a), kb = Object.keys(b);
    if (ka.length !== kb.length) return false;
    for (var j = 0; j < ka.length; j++) {
      var k = ka[j];
      if (!(k in b) || !__eq(a[k], b[k])) return false;
    }
    return true;
  }
  return false;
}`},

	"cmp": {src: `function __cmp(a, b) {
  if (a == null || b == null) return a == null && b == null ? 0 : (a == null ? 1 : -1);
  if (typeof a === "number" && typeof b === "number") return a < b ? -1 : (a > b ? 1 : 0);
  if (typeof a === "string" && typeof b === "string") return a < b ? -1 : (a > b ? 1 : 0);
  if (typeof a === "boolean" && typeof b === "boolean") return a === b ? 0 : (b ? -1 : 1);
  var ta = Array.isArray(a) ? "array" : typeof a;
  var tb = Array.isArray(b) ? "array" : typeof b;
  return ta < tb ? -1 : (ta > tb ? 1 : 0);
}`},

	"lev": {src: `function __lev(a, b) {
  if (a === b) return 0;
  if (!a.length) return b.length;
  if (!b.length) return a.length;
  var prev = [], curr = [];
  for (var j = 0; j <= b.length; j++) prev[j] = j;
  for (var i = 1; i <= a.length; i++) {
    curr[0] = i;
    for (var k = 1; k <= b.length; k++) {
      var cost = a[i - 1] === b[k - 1] ? 0 : 1;
      curr[k] = Math.min(prev[k] + 1, curr[k - 1] + 1, prev[k - 1] + cost);
    }
    var tmp = prev; prev = curr; curr = tmp;
  }
  return prev[b.length];
}`},

	"suggest": {deps: []string{"lev"}, src: `function __suggest(obj, key) {
  var ranked = [];
  var names = Object.keys(obj).sort();
  for (var i = 0; i < names.length; i++) {
    var d = __lev(names[i], key);
    if (d <= 2) ranked.push([d, names[i]]);
  }
  ranked.sort(function(a, b) { return a[0] - b[0]; });
  return ranked.map(function(r) { return r[1]; });
}`},

	"key": {deps: []string{"get"}, src: `function __key(k) {
  if (typeof k === "function") return k;
  if (k == null) return function(it) { return it; };
  return function(it) { return __get(it, String(k)); };
}`},

	// --- access ---

	"get": {src: `function __get(o, path) {
  if (path === "") return o;
  var segs = path.split(".");
  for (var i = 0; i < segs.length; i++) {
    if (o == null || typeof o !== "object" || Array.isArray(o)) return null;
    if (!Object.prototype.hasOwnProperty.call(o, segs[i])) return null;
    o = o[segs[i]];
  }
  return o === undefined ? null : o;
}`},

	"set": {src: `function __set(o, path, value) {
  var segs = typeof path === "string" ? path.split(".") : [String(path)];
  function assign(v, i) {
    if (i === segs.length) return value;
    var out = {};
    if (v != null && typeof v === "object" && !Array.isArray(v)) {
      for (var k in v) { out[k] = v[k]; }
    }
    out[segs[i]] = assign(out[segs[i]], i + 1);
    return out;
  }
  return assign(o, 0);
}`},

	"has": {src: `function __has(o, path) {
  if (path === "") return true;
  var segs = String(path).split(".");
  for (var i = 0; i < segs.length; i++) {
    if (o == null || typeof o !== "object" || Array.isArray(o)) return false;
    if (!Object.prototype.hasOwnProperty.call(o, segs[i])) return false;
    o = o[segs[i]];
  }
  return true;
}`},

	"prop": {deps: []string{"err", "suggest"}, src: `function __prop(o, key, path) {
  if (o == null) throw __err("null_access", "cannot access " + JSON.stringify(key) + " of null at " + path, { path: path });
  if (typeof o !== "object" || Array.isArray(o)) throw __err("property_missing", "no property " + JSON.stringify(key) + " at " + path, { key: key, path: path, suggestions: [] });
  if (!Object.prototype.hasOwnProperty.call(o, key)) throw __err("property_missing", "no property " + JSON.stringify(key) + " at " + path, { key: key, path: path, suggestions: __suggest(o, key) });
  var v = o[key];
  return v === undefined ? null : v;
}`},

	"at": {deps: []string{"err"}, src: `function __at(o, i, path) {
  if (o == null) throw __err("null_access", "cannot index null at " + path, { path: path });
  if (!Array.isArray(o)) throw __err("not_an_array", "value at " + path + " is not an array", { path: path });
  var n = i < 0 ? i + o.length : i;
  if (n < 0 || n >= o.length) throw __err("index_out_of_bounds", "index " + i + " out of bounds (length " + o.length + ") at " + path, { index: i, length: o.length, path: path });
  var v = o[n];
  return v === undefined ? null : v;
}`},

	"toSeq": {deps: []string{"err"}, src: `function __toSeq(o, path) {
  if (o == null) throw __err("null_access", "cannot iterate null at " + path, { path: path });
  if (!Array.isArray(o)) throw __err("not_an_array", "value at " + path + " is not an array", { path: path });
  return o;
}`},

	"nth": {src: `function __nth(o, i) {
  if (!Array.isArray(o)) return null;
  var n = i < 0 ? i + o.length : i;
  if (n < 0 || n >= o.length) return null;
  var v = o[n];
  return v === undefined ? null : v;
}`},

	"seq": {src: `function __seq(v) {
  if (v == null) return [];
  if (Array.isArray(v)) return v;
  return [v];
}`},

	"in": {deps: []string{"eq"}, src: `function __in(needle, haystack) {
  if (Array.isArray(haystack)) {
    for (var i = 0; i < haystack.length; i++) { if (__eq(haystack[i], needle)) return true; }
    return false;
  }
  if (typeof haystack === "string") return typeof needle === "string" && haystack.indexOf(needle) !== -1;
  if (haystack != null && typeof haystack === "object") return typeof needle === "string" && Object.prototype.hasOwnProperty.call(haystack, needle);
  return false;
}`},

	// --- strings ---

	"concat": {deps: []string{"str"}, src: `function __concat() {
  var out = "";
  for (var i = 0; i < arguments.length; i++) { out += __str(arguments[i]); }
  return out;
}`},

	"upper": {deps: []string{"str"}, src: `function __upper(s) { return __str(s).toUpperCase(); }`},

	"lower": {deps: []string{"str"}, src: `function __lower(s) { return __str(s).toLowerCase(); }`},

	"capitalize": {deps: []string{"str"}, src: `function __capitalize(s) {
  s = __str(s);
  return s === "" ? s : s.charAt(0).toUpperCase() + s.slice(1);
}`},

	"trim": {deps: []string{"str"}, src: `function __trim(s) { return __str(s).trim(); }`},

	"split": {deps: []string{"str"}, src: `function __split(s, sep) { return __str(s).split(__str(sep)); }`},

	"join": {deps: []string{"seq", "str"}, src: `function __join(v, sep) {
  return __seq(v).map(__str).join(sep === undefined ? "," : __str(sep));
}`},

	"replace": {deps: []string{"str"}, src: `function __replace(s, from, to) {
  return __str(s).split(__str(from)).join(__str(to));
}`},

	"padStart": {deps: []string{"str"}, src: `function __padStart(s, width, fill) {
  s = __str(s);
  fill = fill === undefined ? " " : __str(fill);
  if (fill === "") return s;
  while (s.length < width) { s = fill.charAt((width - s.length - 1) % fill.length) + s; }
  return s;
}`},

	"padEnd": {deps: []string{"str"}, src: `function __padEnd(s, width, fill) {
  s = __str(s);
  fill = fill === undefined ? " " : __str(fill);
  if (fill === "") return s;
  var i = 0;
  while (s.length < width) { s += fill.charAt(i++ % fill.length); }
  return s;
}`},

	"startsWith": {deps: []string{"str"}, src: `function __startsWith(s, prefix) { return __str(s).indexOf(__str(prefix)) === 0; }`},

	"endsWith": {deps: []string{"str"}, src: `function __endsWith(s, suffix) {
  s = __str(s); suffix = __str(suffix);
  return suffix === "" || s.slice(-suffix.length) === suffix;
}`},

	// --- numerics ---

	"round": {src: `function __round(n, digits) {
  if (digits === undefined) return Math.round(n);
  var scale = Math.pow(10, Math.trunc(digits));
  return Math.round(n * scale) / scale;
}`},

	"floor": {src: `function __floor(n) { return Math.floor(n); }`},

	"ceil": {src: `function __ceil(n) { return Math.ceil(n); }`},

	"abs": {src: `function __abs(n) { return Math.abs(n); }`},

	"clamp": {src: `function __clamp(n, lo, hi) { return Math.min(Math.max(n, lo), hi); }`},

	"nums": {deps: []string{"seq"}, src: `function __nums(v) {
  return __seq(v).filter(function(x) { return typeof x === "number" && !isNaN(x); });
}`},

	"min": {deps: []string{"nums"}, src: `function __min() {
  var nums = arguments.length === 1 ? __nums(arguments[0]) : Array.prototype.slice.call(arguments);
  if (!nums.length) return null;
  return Math.min.apply(null, nums);
}`},

	"max": {deps: []string{"nums"}, src: `function __max() {
  var nums = arguments.length === 1 ? __nums(arguments[0]) : Array.prototype.slice.call(arguments);
  if (!nums.length) return null;
  return Math.max.apply(null, nums);
}`},

	"sum": {deps: []string{"nums"}, src: `function __sum(v) {
  return __nums(v).reduce(function(a, n) { return a + n; }, 0);
}`},

	"avg": {deps: []string{"nums"}, src: `function __avg(v) {
  var nums = __nums(v);
  if (!nums.length) return null;
  return nums.reduce(function(a, n) { return a + n; }, 0) / nums.length;
}`},

	// --- arrays ---

	"count": {src: `function __count(v) {
  if (v == null) return 0;
  if (typeof v === "string" || Array.isArray(v)) return v.length;
  if (typeof v === "object") return Object.keys(v).length;
  return 1;
}`},

	"first": {deps: []string{"seq"}, src: `function __first(v) {
  var a = __seq(v);
  return a.length ? a[0] : null;
}`},

	"last": {deps: []string{"seq"}, src: `function __last(v) {
  var a = __seq(v);
  return a.length ? a[a.length - 1] : null;
}`},

	"reverse": {deps: []string{"seq"}, src: `function __reverse(v) { return __seq(v).slice().reverse(); }`},

	"sortBy": {deps: []string{"seq", "key", "cmp"}, src: `function __sortBy(v, k, desc) {
  var extract = __key(k);
  var entries = __seq(v).map(function(it, i) { return [extract(it, i), i, it]; });
  entries.sort(function(a, b) {
    var c = __cmp(a[0], b[0]);
    if (c === 0) return a[1] - b[1];
    return desc ? -c : c;
  });
  return entries.map(function(e) { return e[2]; });
}`},

	"sort": {deps: []string{"sortBy"}, src: `function __sort(v, k) { return __sortBy(v, k, false); }`},

	"sortDesc": {deps: []string{"sortBy"}, src: `function __sortDesc(v, k) { return __sortBy(v, k, true); }`},

	"uniq": {deps: []string{"seq", "key", "eq"}, src: `function __uniq(v, k) {
  var extract = __key(k);
  var seen = [], out = [];
  __seq(v).forEach(function(it, i) {
    var kv = extract(it, i);
    for (var j = 0; j < seen.length; j++) { if (__eq(seen[j], kv)) return; }
    seen.push(kv);
    out.push(it);
  });
  return out;
}`},

	"flatten": {deps: []string{"seq"}, src: `function __flatten(v, depth) {
  depth = depth === undefined ? 1 : depth;
  var out = [];
  __seq(v).forEach(function(it) {
    if (Array.isArray(it) && depth > 0) { out.push.apply(out, __flatten(it, depth - 1)); }
    else { out.push(it); }
  });
  return out;
}`},

	"slice": {deps: []string{"seq"}, src: `function __slice(v, from, to) {
  var a = __seq(v);
  if (to === undefined) to = a.length;
  if (from < 0) from += a.length;
  if (to < 0) to += a.length;
  from = Math.max(0, Math.min(from, a.length));
  to = Math.max(from, Math.min(to, a.length));
  return a.slice(from, to);
}`},

	"contains": {deps: []string{"in"}, src: `function __contains(haystack, needle) { return __in(needle, haystack); }`},

	"map": {deps: []string{"seq"}, src: `function __map(v, f) { return __seq(v).map(function(it, i) { return f(it, i); }); }`},

	"filter": {deps: []string{"seq", "truthy"}, src: `function __filter(v, f) { return __seq(v).filter(function(it, i) { return __truthy(f(it, i)); }); }`},

	"reduce": {deps: []string{"seq"}, src: `function __reduce(v, f, init) {
  var a = __seq(v);
  var acc, start = 0;
  if (init !== undefined) { acc = init; }
  else {
    if (!a.length) return null;
    acc = a[0]; start = 1;
  }
  for (var i = start; i < a.length; i++) { acc = f(acc, a[i], i); }
  return acc;
}`},

	"groupBy": {deps: []string{"seq", "key", "str"}, src: `function __groupBy(v, k) {
  var extract = __key(k);
  var out = {};
  __seq(v).forEach(function(it, i) {
    var name = __str(extract(it, i));
    if (!Object.prototype.hasOwnProperty.call(out, name)) out[name] = [];
    out[name].push(it);
  });
  return out;
}`},

	"keyBy": {deps: []string{"seq", "key", "str"}, src: `function __keyBy(v, k) {
  var extract = __key(k);
  var out = {};
  __seq(v).forEach(function(it, i) { out[__str(extract(it, i))] = it; });
  return out;
}`},

	"pluck": {deps: []string{"seq", "key"}, src: `function __pluck(v, k) {
  var extract = __key(k);
  return __seq(v).map(function(it, i) { return extract(it, i); });
}`},

	"extremumBy": {deps: []string{"seq", "key", "cmp"}, src: `function __extremumBy(v, k, dir) {
  var extract = __key(k);
  var best = null, bestKey = null, found = false;
  __seq(v).forEach(function(it, i) {
    var kv = extract(it, i);
    if (kv == null) return;
    if (!found || dir * __cmp(kv, bestKey) > 0) { best = it; bestKey = kv; found = true; }
  });
  return best;
}`},

	"minBy": {deps: []string{"extremumBy"}, src: `function __minBy(v, k) { return __extremumBy(v, k, -1); }`},

	"maxBy": {deps: []string{"extremumBy"}, src: `function __maxBy(v, k) { return __extremumBy(v, k, 1); }`},

	"sumBy": {deps: []string{"seq", "key"}, src: `function __sumBy(v, k) {
  var extract = __key(k);
  var total = 0;
  __seq(v).forEach(function(it, i) {
    var kv = extract(it, i);
    if (typeof kv === "number" && !isNaN(kv)) total += kv;
  });
  return total;
}`},

	// --- objects ---

	"keys": {src: `function __keys(o) { return o == null ? [] : Object.keys(o).sort(); }`},

	"values": {deps: []string{"keys"}, src: `function __values(o) {
  return __keys(o).map(function(k) { return o[k]; });
}`},

	"entries": {deps: []string{"keys"}, src: `function __entries(o) {
  return __keys(o).map(function(k) { return { key: k, value: o[k] }; });
}`},

	"keyList": {src: `function __keyList(v) {
  if (typeof v === "string") return [v];
  if (Array.isArray(v)) return v.filter(function(k) { return typeof k === "string"; });
  return [];
}`},

	"pick": {deps: []string{"keyList"}, src: `function __pick(o, ks) {
  var out = {};
  __keyList(ks).forEach(function(k) {
    if (o != null && Object.prototype.hasOwnProperty.call(o, k)) out[k] = o[k];
  });
  return out;
}`},

	"omit": {deps: []string{"keyList"}, src: `function __omit(o, ks) {
  var drop = {};
  __keyList(ks).forEach(function(k) { drop[k] = true; });
  var out = {};
  if (o != null) { for (var k in o) { if (!drop[k]) out[k] = o[k]; } }
  return out;
}`},

	"merge": {src: `function __merge() {
  var out = {};
  for (var i = 0; i < arguments.length; i++) {
    var o = arguments[i];
    if (o == null || typeof o !== "object" || Array.isArray(o)) continue;
    for (var k in o) { out[k] = o[k]; }
  }
  return out;
}`},

	// --- types and conversions ---

	"isArray": {src: `function __isArray(v) { return Array.isArray(v); }`},

	"isObject": {src: `function __isObject(v) { return v != null && typeof v === "object" && !Array.isArray(v); }`},

	"isString": {src: `function __isString(v) { return typeof v === "string"; }`},

	"isNumber": {src: `function __isNumber(v) { return typeof v === "number" && !isNaN(v); }`},

	"isBoolean": {src: `function __isBoolean(v) { return typeof v === "boolean"; }`},

	"isNull": {src: `function __isNull(v) { return v == null; }`},

	"isDefined": {src: `function __isDefined(v) { return v != null; }`},

	"isEmpty": {src: `function __isEmpty(v) {
  if (v == null) return true;
  if (typeof v === "string" || Array.isArray(v)) return v.length === 0;
  if (typeof v === "object") return Object.keys(v).length === 0;
  return false;
}`},

	"typeOf": {src: `function __typeOf(v) {
  if (v == null) return "null";
  if (Array.isArray(v)) return "array";
  return typeof v;
}`},

	"number": {src: `function __number(v) {
  if (v == null) return null;
  if (typeof v === "number") return v;
  if (typeof v === "boolean") return v ? 1 : 0;
  if (typeof v === "string") {
    if (v.trim() === "") return null;
    var n = Number(v);
    return isNaN(n) ? null : n;
  }
  return null;
}`},

	"string": {deps: []string{"str"}, src: `function __string(v) { return __str(v); }`},

	"boolean": {deps: []string{"truthy"}, src: `function __boolean(v) { return __truthy(v); }`},

	"json": {src: `function __json(v, pretty) {
  var out = pretty ? JSON.stringify(v, null, 2) : JSON.stringify(v);
  return out === undefined ? "null" : out;
}`},

	"parseJson": {src: `function __parseJson(s) { return JSON.parse(s); }`},
}
