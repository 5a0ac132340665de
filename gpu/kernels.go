package gpu

import "lotusminer/core/config"

// Kernel source is embedded as string constants rather than loaded from
// disk, so a miner binary never depends on a kernel file being present
// next to it at runtime. Only the search() ABI the kernels expose matters
// to the host. Both embedded kernels declare that ABI with an empty body:
// they write nothing to the output buffer, so a dispatch never reports a
// candidate.

// lotusOGSource is the original Lotus search kernel. local_work_size and
// inner_iter_size are supplied by the host via the WORKSIZE/ITERATIONS
// compiler defines.
const lotusOGSource = `
// LotusOG search kernel. Host-supplied defines: WORKSIZE, ITERATIONS.
__kernel void search(uint offset, __global uint *partial_header, __global uint *output) {
    // Empty body: no nonce search is performed and output is left as is.
}
`

// poclbmSource is the POCLBM-derived kernel variant. The host builds it
// with WORKSIZE=64 and ITERATIONS=8 regardless of the configured values
// (MiningSettings.EffectiveLocalWorkSize/EffectiveInnerIterSize).
const poclbmSource = `
// POCLBM search kernel. Host builds it with WORKSIZE=64, ITERATIONS=8.
__kernel void search(uint offset, __global uint *partial_header, __global uint *output) {
    // Empty body: no nonce search is performed and output is left as is.
}
`

// sourceFor returns the kernel source for a given variant.
func sourceFor(k config.KernelType) string {
	switch k {
	case config.KernelPOCLBM:
		return poclbmSource
	default:
		return lotusOGSource
	}
}
