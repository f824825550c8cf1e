package command

// Page scripts executed through the sandbox. Each returns a JSON-serializable
// value; string arguments are injected via json.Marshal so they are always
// valid JS literals.

// collectClickablesScript gathers the page's clickable elements with their
// visible text, target, and vertical position, for relevance scoring.
const collectClickablesScript = `(() => {
	const nodes = document.querySelectorAll('a, button, [role="button"]');
	const out = [];
	nodes.forEach((el, i) => {
		const rect = el.getBoundingClientRect();
		if (rect.width === 0 && rect.height === 0) return;
		out.push({
			index: i,
			text: (el.innerText || el.textContent || '').trim(),
			href: el.href || '',
			y: rect.top + window.scrollY,
		});
	});
	return out;
})()`

// clickByIndexScript highlights then clicks the i-th clickable element as
// enumerated by collectClickablesScript. The click happens before the script
// returns so callers reading the page afterwards see the landed content.
const clickByIndexScript = `((idx) => {
	const nodes = document.querySelectorAll('a, button, [role="button"]');
	const el = nodes[idx];
	if (!el) return { ok: false, reason: 'not_found' };
	const prev = el.style.outline;
	el.style.outline = '3px solid #4a90d9';
	const text = (el.innerText || '').trim();
	el.click();
	el.style.outline = prev;
	return { ok: true, text: text };
})(%d)`

// agreeCheckboxesScript checks every visible, enabled checkbox whose label
// text reads like an agreement acknowledgement, dispatching change events and
// returning the matched labels.
const agreeCheckboxesScript = `(() => {
	const keywords = ['acknowledge', 'accept', 'agree', 'confirm', 'terms', 'conditions', 'privacy', 'consent'];
	const labelFor = (box) => {
		if (box.id) {
			const lab = document.querySelector('label[for="' + CSS.escape(box.id) + '"]');
			if (lab) return lab.innerText || '';
		}
		const parent = box.closest('label');
		if (parent) return parent.innerText || '';
		return box.getAttribute('aria-label') || '';
	};
	const acknowledged = [];
	document.querySelectorAll('input[type="checkbox"]').forEach((box) => {
		if (box.disabled) return;
		const rect = box.getBoundingClientRect();
		if (rect.width === 0 && rect.height === 0) return;
		const label = labelFor(box).trim();
		const lower = label.toLowerCase();
		if (!keywords.some((k) => lower.includes(k))) return;
		if (!box.checked) {
			box.checked = true;
			box.dispatchEvent(new Event('change', { bubbles: true }));
		}
		const prev = box.style.outline;
		box.style.outline = '3px solid #4a90d9';
		setTimeout(() => { box.style.outline = prev; }, 800);
		acknowledged.push(label);
	});
	return { labels: acknowledged };
})()`

// clickSelectorScript clicks the element matching a CSS selector.
const clickSelectorScript = `((sel) => {
	const el = document.querySelector(sel);
	if (!el) return { ok: false, reason: 'not_found' };
	const prev = el.style.outline;
	el.style.outline = '3px solid #4a90d9';
	setTimeout(() => {
		el.style.outline = prev;
		el.click();
	}, 400);
	return { ok: true };
})(%s)`

// fillSelectorScript writes a value into the element matching a CSS selector
// and dispatches input and change events.
const fillSelectorScript = `((sel, value) => {
	const el = document.querySelector(sel);
	if (!el) return { ok: false, reason: 'not_found' };
	el.value = value;
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	const prev = el.style.outline;
	el.style.outline = '3px solid #4a90d9';
	setTimeout(() => { el.style.outline = prev; }, 800);
	return { ok: true };
})(%s, %s)`

// selectOptionScript chooses a select option by case-insensitive visible
// text and dispatches a change event.
const selectOptionScript = `((sel, optionText) => {
	const el = document.querySelector(sel);
	if (!el) return { ok: false, reason: 'not_found' };
	if (el.tagName.toLowerCase() !== 'select') return { ok: false, reason: 'not_a_select' };
	const wanted = optionText.trim().toLowerCase();
	const match = Array.from(el.options).find((o) => (o.text || '').trim().toLowerCase() === wanted)
		|| Array.from(el.options).find((o) => (o.text || '').trim().toLowerCase().includes(wanted));
	if (!match) return { ok: false, reason: 'no_matching_option' };
	el.value = match.value;
	el.dispatchEvent(new Event('change', { bubbles: true }));
	const prev = el.style.outline;
	el.style.outline = '3px solid #4a90d9';
	setTimeout(() => { el.style.outline = prev; }, 800);
	return { ok: true, selected: match.text };
})(%s, %s)`
