package form

// discoverFieldsScript scans the page for fillable fields. For each visible,
// enabled input, textarea, or select (excluding hidden, submit, button, and
// reset inputs) it derives a human label (label element, then placeholder,
// aria-label, name, id, positional fallback) and a best-effort unique
// selector (id, then name-scoped tag, class-scoped tag, nth-of-type), plus
// the visible option texts for selects.
const discoverFieldsScript = `(() => {
	const fields = [];
	const nodes = document.querySelectorAll('input, textarea, select');
	let position = 0;
	nodes.forEach((el) => {
		const tag = el.tagName.toLowerCase();
		const type = (el.type || '').toLowerCase();
		if (tag === 'input' && ['hidden', 'submit', 'button', 'reset'].includes(type)) return;
		if (el.disabled) return;
		const rect = el.getBoundingClientRect();
		if (rect.width === 0 && rect.height === 0) return;
		position++;

		let label = '';
		if (el.id) {
			const lab = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
			if (lab) label = (lab.innerText || '').trim();
		}
		if (!label) {
			const parent = el.closest('label');
			if (parent) label = (parent.innerText || '').trim();
		}
		if (!label) label = el.placeholder || '';
		if (!label) label = el.getAttribute('aria-label') || '';
		if (!label) label = el.name || '';
		if (!label) label = el.id || '';
		if (!label) label = 'field ' + position;

		let selector = '';
		if (el.id) {
			selector = '#' + CSS.escape(el.id);
		} else if (el.name) {
			selector = tag + '[name="' + CSS.escape(el.name) + '"]';
		} else if (el.className && typeof el.className === 'string' && el.className.trim()) {
			selector = tag + '.' + el.className.trim().split(/\s+/).map(CSS.escape).join('.');
		} else {
			const siblings = Array.from(el.parentNode.querySelectorAll(':scope > ' + tag));
			selector = tag + ':nth-of-type(' + (siblings.indexOf(el) + 1) + ')';
		}

		const field = {
			selector: selector,
			label: label,
			tag: tag,
			inputType: tag === 'input' ? type : '',
			required: !!el.required,
		};
		if (tag === 'select') {
			field.options = Array.from(el.options).map((o) => (o.text || '').trim()).filter(Boolean);
		}
		fields.push(field);
	});
	return fields;
})()`

// writeFieldScript writes a value into one field. Selects match the answer
// against visible option text case-insensitively; everything else takes the
// raw value with input and change events dispatched.
const writeFieldScript = `((sel, value) => {
	const el = document.querySelector(sel);
	if (!el) return { ok: false, reason: 'not_found' };
	if (el.tagName.toLowerCase() === 'select') {
		const wanted = value.trim().toLowerCase();
		const match = Array.from(el.options).find((o) => (o.text || '').trim().toLowerCase() === wanted)
			|| Array.from(el.options).find((o) => (o.text || '').trim().toLowerCase().includes(wanted));
		if (!match) return { ok: false, reason: 'no_matching_option' };
		el.value = match.value;
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return { ok: true };
	}
	el.value = value;
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	const prev = el.style.outline;
	el.style.outline = '3px solid #4a90d9';
	setTimeout(() => { el.style.outline = prev; }, 800);
	return { ok: true };
})(%s, %s)`
