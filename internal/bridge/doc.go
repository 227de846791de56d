// Package bridge exposes the restoration pipeline to a local webview UI
// over socket.io. The UI emits modify_photo requests; the bridge answers
// every request with a stream of modify_progress events terminated by
// modify_result or modify_error, mirroring the desktop shell's original
// invoke/emit contract.
package bridge
