package webgpu

// WGSL compute shaders. String constants rather than embedded files; each
// shader is compiled once and cached by name on the Backend.
//
// The 16-bit softmax variants address the buffer as packed 32-bit words
// (two elements per word), which is why the fused dispatcher requires
// 4-byte aligned rows for f16/bf16.

// workgroupSize is the number of threads per workgroup.
const workgroupSize = 256

// softmaxF32Shader applies softmax along packed rows of length row_len.
// One invocation handles one row, using the max-shift trick for numerical
// stability. start_offset is the input's layout offset in elements; the
// output is always written from offset 0.
const softmaxF32Shader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    num_rows: u32,
    row_len: u32,
    start_offset: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.x;
    if (row >= params.num_rows) {
        return;
    }

    let in_base = params.start_offset + row * params.row_len;
    let out_base = row * params.row_len;

    var max_val: f32 = input[in_base];
    for (var i: u32 = 1u; i < params.row_len; i = i + 1u) {
        max_val = max(max_val, input[in_base + i]);
    }

    var sum: f32 = 0.0;
    for (var i: u32 = 0u; i < params.row_len; i = i + 1u) {
        let e = exp(input[in_base + i] - max_val);
        result[out_base + i] = e;
        sum = sum + e;
    }

    let inv = 1.0 / sum;
    for (var i: u32 = 0u; i < params.row_len; i = i + 1u) {
        result[out_base + i] = result[out_base + i] * inv;
    }
}
`

// softmaxF16Shader is the f16 variant. Elements are stored two per u32
// word and unpacked with unpack2x16float; rows are even-length and
// word-aligned, so every word belongs to exactly one row.
const softmaxF16Shader = `
@group(0) @binding(0) var<storage, read> input: array<u32>;
@group(0) @binding(1) var<storage, read_write> result: array<u32>;

struct Params {
    num_rows: u32,
    row_len: u32,
    start_offset: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

fn load_f16(elem: u32) -> f32 {
    let pair = unpack2x16float(input[elem / 2u]);
    if (elem % 2u == 0u) {
        return pair.x;
    }
    return pair.y;
}

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.x;
    if (row >= params.num_rows) {
        return;
    }

    let in_base = params.start_offset + row * params.row_len;
    let out_word = (row * params.row_len) / 2u;
    let pairs = params.row_len / 2u;

    var max_val: f32 = load_f16(in_base);
    for (var i: u32 = 1u; i < params.row_len; i = i + 1u) {
        max_val = max(max_val, load_f16(in_base + i));
    }

    var sum: f32 = 0.0;
    for (var p: u32 = 0u; p < pairs; p = p + 1u) {
        let e0 = exp(load_f16(in_base + 2u * p) - max_val);
        let e1 = exp(load_f16(in_base + 2u * p + 1u) - max_val);
        result[out_word + p] = pack2x16float(vec2<f32>(e0, e1));
        sum = sum + e0 + e1;
    }

    let inv = 1.0 / sum;
    for (var p: u32 = 0u; p < pairs; p = p + 1u) {
        let pair = unpack2x16float(result[out_word + p]);
        result[out_word + p] = pack2x16float(pair * inv);
    }
}
`

// softmaxBF16Shader is the bf16 variant: widen by shifting into the top
// half of an f32 word, narrow with round-to-nearest-even.
const softmaxBF16Shader = `
@group(0) @binding(0) var<storage, read> input: array<u32>;
@group(0) @binding(1) var<storage, read_write> result: array<u32>;

struct Params {
    num_rows: u32,
    row_len: u32,
    start_offset: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

fn load_bf16(elem: u32) -> f32 {
    let word = input[elem / 2u];
    let bits = (word >> (16u * (elem % 2u))) & 0xFFFFu;
    return bitcast<f32>(bits << 16u);
}

fn narrow_bf16(v: f32) -> u32 {
    let bits = bitcast<u32>(v);
    return (bits + 0x7FFFu + ((bits >> 16u) & 1u)) >> 16u;
}

fn pack_bf16(a: f32, b: f32) -> u32 {
    return narrow_bf16(a) | (narrow_bf16(b) << 16u);
}

fn unpack_bf16(word: u32, half: u32) -> f32 {
    let bits = (word >> (16u * half)) & 0xFFFFu;
    return bitcast<f32>(bits << 16u);
}

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.x;
    if (row >= params.num_rows) {
        return;
    }

    let in_base = params.start_offset + row * params.row_len;
    let out_word = (row * params.row_len) / 2u;
    let pairs = params.row_len / 2u;

    var max_val: f32 = load_bf16(in_base);
    for (var i: u32 = 1u; i < params.row_len; i = i + 1u) {
        max_val = max(max_val, load_bf16(in_base + i));
    }

    var sum: f32 = 0.0;
    for (var p: u32 = 0u; p < pairs; p = p + 1u) {
        let e0 = exp(load_bf16(in_base + 2u * p) - max_val);
        let e1 = exp(load_bf16(in_base + 2u * p + 1u) - max_val);
        result[out_word + p] = pack_bf16(e0, e1);
        sum = sum + e0 + e1;
    }

    let inv = 1.0 / sum;
    for (var p: u32 = 0u; p < pairs; p = p + 1u) {
        let word = result[out_word + p];
        result[out_word + p] = pack_bf16(unpack_bf16(word, 0u) * inv, unpack_bf16(word, 1u) * inv);
    }
}
`

// sumAxisShader sums along one axis of an arbitrarily strided f32 tensor.
// meta holds dims[0..rank) followed by strides[0..rank); one invocation
// accumulates one reduction group, stepping by the reduced axis's stride.
const sumAxisShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;
@group(0) @binding(2) var<storage, read> meta: array<u32>;

struct Params {
    rank: u32,
    axis: u32,
    num_groups: u32,
    dim_size: u32,
    dim_stride: u32,
    start_offset: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let g = global_id.x;
    if (g >= params.num_groups) {
        return;
    }

    var base = params.start_offset;
    var rem = g;
    var d = params.rank;
    loop {
        if (d == 0u) {
            break;
        }
        d = d - 1u;
        if (d == params.axis) {
            continue;
        }
        base = base + (rem % meta[d]) * meta[params.rank + d];
        rem = rem / meta[d];
    }

    var acc: f32 = 0.0;
    for (var k: u32 = 0u; k < params.dim_size; k = k + 1u) {
        acc = acc + input[base + k * params.dim_stride];
    }
    result[g] = acc;
}
`

// argReduceShader finds the index of the extremum along one axis of an
// arbitrarily strided f32 tensor. largest selects max vs min; strict
// comparisons give the first-occurrence tie-break.
const argReduceShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<u32>;
@group(0) @binding(2) var<storage, read> meta: array<u32>;

struct Params {
    rank: u32,
    axis: u32,
    num_groups: u32,
    dim_size: u32,
    dim_stride: u32,
    start_offset: u32,
    largest: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let g = global_id.x;
    if (g >= params.num_groups) {
        return;
    }

    var base = params.start_offset;
    var rem = g;
    var d = params.rank;
    loop {
        if (d == 0u) {
            break;
        }
        d = d - 1u;
        if (d == params.axis) {
            continue;
        }
        base = base + (rem % meta[d]) * meta[params.rank + d];
        rem = rem / meta[d];
    }

    var best = input[base];
    var best_idx: u32 = 0u;
    for (var k: u32 = 1u; k < params.dim_size; k = k + 1u) {
        let v = input[base + k * params.dim_stride];
        if ((params.largest == 1u && v > best) || (params.largest == 0u && v < best)) {
            best = v;
            best_idx = k;
        }
    }
    result[g] = best_idx;
}
`
