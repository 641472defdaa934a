package graphics

// Flat colour quad program. Corners arrive counter-clockwise as seen from
// the front, so the geometry stage emits them as a strip 0,1,3,2.

const QuadVertexShader = `#version 410 core
layout(location = 0) in vec3 c0;
layout(location = 1) in vec3 c1;
layout(location = 2) in vec3 c2;
layout(location = 3) in vec3 c3;
layout(location = 4) in uint rgba;

out VS_OUT {
	vec3 c[4];
	vec4 color;
} vs;

void main() {
	vs.c[0] = c0;
	vs.c[1] = c1;
	vs.c[2] = c2;
	vs.c[3] = c3;
	vs.color = unpackUnorm4x8(rgba);
	gl_Position = vec4(c0, 1.0);
}`

const QuadGeometryShader = `#version 410 core
layout(points) in;
layout(triangle_strip, max_vertices = 4) out;

in VS_OUT {
	vec3 c[4];
	vec4 color;
} gs[];

uniform mat4 proj;
uniform mat4 view;
uniform vec3 lightDir;

out vec4 fragColor;
out float fragLight;

// Outputs are undefined after EmitVertex, so every vertex writes them.
void emit(vec3 p, float light) {
	gl_Position = proj * view * vec4(p, 1.0);
	fragColor = gs[0].color;
	fragLight = light;
	EmitVertex();
}

void main() {
	vec3 n = normalize(cross(gs[0].c[1] - gs[0].c[0], gs[0].c[3] - gs[0].c[0]));
	float light = 0.6 + 0.4 * max(dot(n, lightDir), 0.0);
	emit(gs[0].c[0], light);
	emit(gs[0].c[1], light);
	emit(gs[0].c[3], light);
	emit(gs[0].c[2], light);
	EndPrimitive();
}`

const QuadFragmentShader = `#version 410 core
in vec4 fragColor;
in float fragLight;

uniform float alphaCutoff;

out vec4 outColor;

void main() {
	if (fragColor.a < alphaCutoff) {
		discard;
	}
	outColor = vec4(fragColor.rgb * fragLight, fragColor.a);
}`
